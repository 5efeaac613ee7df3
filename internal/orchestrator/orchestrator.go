package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"chainlens-backend/internal/blockscout"
	"chainlens-backend/internal/intent"
	"chainlens-backend/internal/normalize"
	"chainlens-backend/internal/types"
)

// Result types that are not operation names.
const (
	TypeText          = "text"
	TypeClarification = "clarification"
	TypeError         = "error"
)

const ensUnavailable = "ENS resolution service is currently unavailable. Common addresses:\n\n" +
	"vitalik.eth = 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045\n\n" +
	"Please provide the Ethereum address directly, or try again later."

// Result is what one directive produced for the chat reply.
type Result struct {
	Text          string
	Data          json.RawMessage
	Type          string
	Tool          blockscout.Tool
	Visualization *normalize.Visualization
}

type Orchestrator struct {
	caller     blockscout.Caller
	normalizer *normalize.Normalizer
}

func New(caller blockscout.Caller, normalizer *normalize.Normalizer) *Orchestrator {
	if normalizer == nil {
		normalizer = normalize.New()
	}
	return &Orchestrator{caller: caller, normalizer: normalizer}
}

// Execute runs a directive to completion. Upstream failures become an error
// result with readable text; nothing is retried.
func (o *Orchestrator) Execute(ctx context.Context, d intent.Directive) Result {
	switch d := d.(type) {
	case intent.PlainText:
		return Result{Text: d.Text, Type: TypeText}
	case intent.Clarification:
		return Result{Text: d.Message, Type: TypeClarification}
	case intent.DirectCall:
		if d.Explanation != "" {
			log.Printf("[orchestrator] %s: %s", d.Tool, d.Explanation)
		}
		return o.Run(ctx, d.Tool, d.Params)
	case intent.ChainedCall:
		return o.chain(ctx, d)
	}
	log.Printf("[orchestrator] unsupported directive %T", d)
	return Result{Text: "Sorry, I could not understand how to answer that request.", Type: TypeError}
}

// Run calls one operation and normalizes its response. A failed call becomes
// an error result.
func (o *Orchestrator) Run(ctx context.Context, tool blockscout.Tool, params blockscout.Params) Result {
	res, err := o.Fetch(ctx, tool, params)
	if err != nil {
		log.Printf("[orchestrator] %s failed: %v", tool, err)
		return Result{
			Text: fmt.Sprintf("Sorry, there was an error fetching data from Blockscout: %v", err),
			Type: TypeError,
			Tool: tool,
		}
	}
	return res
}

// Fetch is Run without the error conversion.
func (o *Orchestrator) Fetch(ctx context.Context, tool blockscout.Tool, params blockscout.Params) (Result, error) {
	raw, err := o.caller.Call(ctx, tool, params)
	if err != nil {
		return Result{}, err
	}
	out := o.normalizer.Normalize(tool, raw)
	chainID := params["chain_id"]
	out.Visualization.Annotate(params["address"], chainID, types.ChainName(chainID))
	return Result{
		Text:          out.Text,
		Data:          out.Data,
		Type:          string(tool),
		Tool:          tool,
		Visualization: out.Visualization,
	}, nil
}

func (o *Orchestrator) chain(ctx context.Context, d intent.ChainedCall) Result {
	name := d.ResolutionParams["name"]
	log.Printf("[orchestrator] resolving %q with %s before %s", name, d.ResolutionTool, d.NextTool)

	raw, err := o.caller.Call(ctx, d.ResolutionTool, d.ResolutionParams)
	if err != nil {
		log.Printf("[orchestrator] resolution of %q failed: %v", name, err)
		return Result{Text: ensUnavailable, Type: TypeError}
	}
	addr := resolvedAddress(raw)
	if addr == "" {
		log.Printf("[orchestrator] %q did not resolve to an address", name)
		return Result{
			Text: fmt.Sprintf("Could not resolve ENS name %q. Please provide the Ethereum address directly.", name),
			Type: TypeError,
		}
	}

	params := d.NextParams.Clone()
	params["address"] = addr
	return o.Run(ctx, d.NextTool, params)
}

func resolvedAddress(raw json.RawMessage) string {
	var v struct {
		ResolvedAddress blockscout.Value `json:"resolved_address"`
	}
	if err := json.Unmarshal(blockscout.Payload(raw), &v); err != nil || v.ResolvedAddress.Empty() {
		return ""
	}
	return v.ResolvedAddress.S
}
