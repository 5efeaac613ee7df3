package types

import (
	"encoding/json"

	"chainlens-backend/internal/blockscout"
	"chainlens-backend/internal/ens"
	"chainlens-backend/internal/llm"
	"chainlens-backend/internal/normalize"
)

type ChatRequest struct {
	Message string     `json:"message"`
	History []llm.Turn `json:"history,omitempty"`
}

// ChatResponse is returned by the chat endpoint and the direct tool
// endpoint. Data is null when no operation ran.
type ChatResponse struct {
	Response        string                   `json:"response"`
	Data            json.RawMessage          `json:"data"`
	Type            string                   `json:"type"`
	Tool            blockscout.Tool          `json:"tool,omitempty"`
	Visualization   *normalize.Visualization `json:"visualization,omitempty"`
	ENSReplacements []ens.Replacement        `json:"ens_replacements,omitempty"`
	ENSWarnings     []ens.Warning            `json:"ens_warnings,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ResolveRequest struct {
	Text string `json:"text"`
}

type ToolsResponse struct {
	Tools []blockscout.ToolSpec `json:"tools"`
}
