package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"chainlens-backend/internal/blockscout"
)

// Output is the display form of one upstream response.
type Output struct {
	Text          string
	Data          json.RawMessage
	Visualization *Visualization
}

// formatFunc renders a decoded envelope. An error sends the response to the
// raw JSON fallback.
type formatFunc func(env blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error)

// Normalizer maps each operation's response shape to text and chart data.
type Normalizer struct {
	formats map[blockscout.Tool]formatFunc
}

func New() *Normalizer {
	return &Normalizer{formats: map[blockscout.Tool]formatFunc{
		blockscout.ToolChainsList:            formatChains,
		blockscout.ToolAddressInfo:           formatAddressInfo,
		blockscout.ToolAddressByENSName:      formatENSName,
		blockscout.ToolTransactionsByAddress: formatTransactions,
		blockscout.ToolTokenTransfersByAddr:  formatTokenTransfers,
		blockscout.ToolTokensByAddress:       formatTokens,
		blockscout.ToolNFTTokensByAddress:    formatNFTs,
		blockscout.ToolTransactionInfo:       formatTransactionInfo,
		blockscout.ToolTransactionLogs:       formatTransactionLogs,
		blockscout.ToolTransactionSummary:    formatTransactionSummary,
		blockscout.ToolBlockInfo:             formatBlockInfo,
		blockscout.ToolLatestBlock:           formatLatestBlock,
		blockscout.ToolLookupTokenBySymbol:   formatTokenLookup,
		blockscout.ToolContractABI:           formatContractABI,
		blockscout.ToolInspectContractCode:   formatContractCode,
		blockscout.ToolReadContract:          formatReadContract,
	}}
}

// Normalize renders raw for tool. Unknown tools and payloads a formatter
// cannot decode are shown as indented JSON.
func (n *Normalizer) Normalize(tool blockscout.Tool, raw json.RawMessage) Output {
	format, ok := n.formats[tool]
	if !ok {
		return Output{Text: prettyJSON(raw), Data: raw}
	}
	data := blockscout.Payload(raw)
	env, err := envelopeOf(raw)
	if err != nil {
		log.Printf("[normalize] %s: response is not an object: %v", tool, err)
		return Output{Text: prettyJSON(raw), Data: data}
	}
	text, viz, err := format(env, raw)
	if err != nil {
		log.Printf("[normalize] %s: unexpected shape, showing raw JSON: %v", tool, err)
		return Output{Text: prettyJSON(raw), Data: data}
	}
	return Output{Text: text, Data: data, Visualization: viz}
}

// envelopeOf accepts the usual {data, pagination} wrapper or a bare list.
func envelopeOf(raw json.RawMessage) (blockscout.Envelope, error) {
	var env blockscout.Envelope
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		env.Data = raw
		return env, nil
	}
	err := json.Unmarshal(raw, &env)
	return env, err
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// decodeList reads the list payload ("data", then "items").
func decodeList[T any](env blockscout.Envelope) ([]T, error) {
	list := env.List()
	if list == nil {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}

// decodeObject reads the object payload ("data", else the whole body).
func decodeObject[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(blockscout.Payload(raw), &v); err != nil {
		return v, fmt.Errorf("decode object: %w", err)
	}
	return v, nil
}

// footer appends the truncation and pagination notices shared by list views.
func footer(b *strings.Builder, shown, total int, noun string, env blockscout.Envelope) {
	if total > shown {
		fmt.Fprintf(b, "Showing %d of %d %s\n", shown, total, noun)
	}
	if env.Pagination.HasNext() {
		fmt.Fprintf(b, "\nMore %s available - ask me to show more!", noun)
	}
}
