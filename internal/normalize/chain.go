package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"chainlens-backend/internal/blockscout"
)

const (
	chainCap       = 20
	tokenLookupCap = 10
	abiCap         = 15
	fileCap        = 20
	sourcePreview  = 2000
)

func formatLatestBlock(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	blk, err := decodeObject[blockscout.Block](raw)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString("Latest Block Information:\n\n")
	writeBlock(&b, blk)
	return b.String(), nil, nil
}

func formatBlockInfo(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	payload := blockscout.Payload(raw)
	blk, err := decodeObject[blockscout.Block](raw)
	if err != nil {
		return "", nil, err
	}
	// include_transactions nests the block under "block_details".
	var nested struct {
		Details      *blockscout.Block `json:"block_details"`
		Transactions []json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(payload, &nested); err == nil && nested.Details != nil {
		blk = *nested.Details
	}

	var b strings.Builder
	b.WriteString("Block Information:\n\n")
	writeBlock(&b, blk)
	if n := len(nested.Transactions); n > 0 {
		fmt.Fprintf(&b, "Transactions Included: %d\n", n)
	}
	return b.String(), nil, nil
}

func writeBlock(b *strings.Builder, blk blockscout.Block) {
	if num := blk.Number(); !num.Empty() {
		fmt.Fprintf(b, "Block Number: %s\n", formatCount(num))
	}
	if !blk.Hash.Empty() {
		fmt.Fprintf(b, "Hash: %s\n", short(blk.Hash.S))
	}
	if !blk.Timestamp.Empty() {
		fmt.Fprintf(b, "Timestamp: %s\n", formatTime(blk.Timestamp))
	}
	count := blk.TransactionsCount
	if count.Empty() {
		count = blk.TransactionCount
	}
	if !count.Empty() {
		fmt.Fprintf(b, "Transactions: %s\n", formatCount(count))
	}
	if !blk.GasUsed.Empty() {
		if !blk.GasLimit.Empty() {
			fmt.Fprintf(b, "Gas Used: %s / %s\n", formatCount(blk.GasUsed), formatCount(blk.GasLimit))
		} else {
			fmt.Fprintf(b, "Gas Used: %s\n", formatCount(blk.GasUsed))
		}
	}
	if !blk.BaseFeePerGas.Empty() {
		fmt.Fprintf(b, "Base Fee: %s Gwei\n", formatAmount(blk.BaseFeePerGas.S, 9))
	}
	if blk.Miner.Hash != "" {
		fmt.Fprintf(b, "Miner: %s\n", short(blk.Miner.Hash))
	}
}

func formatChains(env blockscout.Envelope, _ json.RawMessage) (string, *Visualization, error) {
	chains, err := decodeList[blockscout.Chain](env)
	if err != nil {
		return "", nil, err
	}
	if len(chains) == 0 {
		return "No supported blockchains found.", nil, nil
	}

	var b strings.Builder
	b.WriteString("Supported Blockchains:\n\n")
	for _, c := range chains[:min(len(chains), chainCap)] {
		id := c.ID
		if id.Empty() {
			id = c.ChainID
		}
		if id.Empty() {
			fmt.Fprintf(&b, "- %s\n", or(c.Name, "Unknown"))
			continue
		}
		fmt.Fprintf(&b, "- %s (ID: %s)\n", or(c.Name, "Unknown"), id)
	}
	footer(&b, chainCap, len(chains), "chains", env)
	return b.String(), nil, nil
}

func formatTokenLookup(env blockscout.Envelope, _ json.RawMessage) (string, *Visualization, error) {
	tokens, err := decodeList[blockscout.Token](env)
	if err != nil {
		return "", nil, err
	}
	if len(tokens) == 0 {
		return "No tokens found with that symbol.", nil, nil
	}

	var b strings.Builder
	b.WriteString("Token Search Results:\n\n")
	for i, t := range tokens[:min(len(tokens), tokenLookupCap)] {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, or(t.Name, "Unknown"), or(t.Symbol, "N/A"))
		if !t.Address.Empty() {
			fmt.Fprintf(&b, "   Address: %s\n", short(t.Address.S))
		}
		if kind := or(t.TokenType, t.Type.S); kind != "" {
			fmt.Fprintf(&b, "   Type: %s\n", kind)
		}
		if r, ok := rate(t.ExchangeRate); ok {
			fmt.Fprintf(&b, "   Price: %s\n", formatUSD(r))
		}
		if t.Verified.Valid {
			fmt.Fprintf(&b, "   Verified: %s\n", yesNo(t.Verified.Bool()))
		}
		b.WriteString("\n")
	}
	footer(&b, tokenLookupCap, len(tokens), "tokens", env)
	return b.String(), nil, nil
}

func formatContractABI(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	entries, err := abiEntries(blockscout.Payload(raw))
	if err != nil {
		return "", nil, err
	}
	var functions, events []string
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		switch e.Type {
		case "function":
			functions = append(functions, e.Name)
		case "event":
			events = append(events, e.Name)
		}
	}
	if len(functions) == 0 && len(events) == 0 {
		return "No ABI available for this contract.", nil, nil
	}

	var b strings.Builder
	b.WriteString("Contract ABI:\n")
	writeNames(&b, "Functions", "functions", functions)
	writeNames(&b, "Events", "events", events)
	return b.String(), nil, nil
}

// abiEntries accepts {"abi": [...]} or the bare list.
func abiEntries(payload json.RawMessage) ([]blockscout.ABIEntry, error) {
	trimmed := bytes.TrimSpace(payload)
	var entries []blockscout.ABIEntry
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode abi: %w", err)
		}
		return entries, nil
	}
	var wrapped struct {
		ABI []blockscout.ABIEntry `json:"abi"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode abi: %w", err)
	}
	return wrapped.ABI, nil
}

func writeNames(b *strings.Builder, title, noun string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(names))
	for _, n := range names[:min(len(names), abiCap)] {
		fmt.Fprintf(b, "- %s\n", n)
	}
	if len(names) > abiCap {
		fmt.Fprintf(b, "Showing %d of %d %s\n", abiCap, len(names), noun)
	}
}

func formatContractCode(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	c, err := decodeObject[blockscout.ContractCode](raw)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString("Contract Source:\n\n")
	if !c.Name.Empty() {
		fmt.Fprintf(&b, "Name: %s\n", c.Name)
	}
	if !c.Language.Empty() {
		fmt.Fprintf(&b, "Language: %s\n", c.Language)
	}
	if !c.CompilerVersion.Empty() {
		fmt.Fprintf(&b, "Compiler: %s\n", c.CompilerVersion)
	}
	if !c.VerifiedAt.Empty() {
		fmt.Fprintf(&b, "Verified At: %s\n", formatTime(c.VerifiedAt))
	}
	if n := len(c.Files); n > 0 {
		fmt.Fprintf(&b, "\nFiles (%d):\n", n)
		for _, f := range c.Files[:min(n, fileCap)] {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		if n > fileCap {
			fmt.Fprintf(&b, "Showing %d of %d files\n", fileCap, n)
		}
	}
	if !c.FileContent.Empty() {
		content := c.FileContent.S
		if len(content) > sourcePreview {
			content = content[:sourcePreview] + "\n..."
		}
		fmt.Fprintf(&b, "\n```\n%s\n```\n", content)
	}
	return b.String(), nil, nil
}

func formatReadContract(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	d, err := decodeObject[struct {
		Result blockscout.Value `json:"result"`
	}](raw)
	if err != nil {
		return "", nil, err
	}
	if d.Result.Empty() {
		return "The contract call returned no result.", nil, nil
	}
	return fmt.Sprintf("Contract Call Result:\n\n%s\n", d.Result), nil, nil
}
