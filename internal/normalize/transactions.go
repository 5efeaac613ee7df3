package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"chainlens-backend/internal/blockscout"
)

const (
	nestedTransferCap = 5
	logCap            = 10
)

func formatTransactionSummary(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	items, err := summaryItems(blockscout.Payload(raw))
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return "Transaction summary not available for this transaction.", nil, nil
	}

	var b strings.Builder
	b.WriteString("Transaction Summary:\n\n")
	for _, item := range items {
		b.WriteString(renderTemplate(item))
		b.WriteString("\n")
	}
	return b.String(), nil, nil
}

// summaryItems accepts {"summary": [...]} or the bare list.
func summaryItems(payload json.RawMessage) ([]blockscout.SummaryItem, error) {
	trimmed := bytes.TrimSpace(payload)
	var items []blockscout.SummaryItem
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		return items, nil
	}
	var wrapped struct {
		Summary []blockscout.SummaryItem `json:"summary"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return wrapped.Summary, nil
}

// renderTemplate substitutes each {name} placeholder with its typed variable.
func renderTemplate(item blockscout.SummaryItem) string {
	out := item.Template
	names := make([]string, 0, len(item.Variables))
	for name := range item.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = strings.ReplaceAll(out, "{"+name+"}", summaryValue(item.Variables[name]))
	}
	return out
}

func summaryValue(v blockscout.SummaryVariable) string {
	switch v.Type {
	case "address":
		var a blockscout.AddressRef
		if err := json.Unmarshal(v.Value, &a); err != nil {
			return "Unknown"
		}
		switch {
		case a.Name != "":
			return a.Name
		case a.ENSDomainName != "":
			return a.ENSDomainName
		case a.Hash != "":
			return short(a.Hash)
		}
		return "Unknown"
	case "currency":
		var val blockscout.Value
		_ = json.Unmarshal(v.Value, &val)
		f, err := strconv.ParseFloat(strings.TrimSpace(val.S), 64)
		if err != nil {
			f = 0
		}
		return strconv.FormatFloat(f, 'f', summaryDigits, 64)
	}
	var val blockscout.Value
	if err := json.Unmarshal(v.Value, &val); err != nil {
		return ""
	}
	return val.S
}

func formatTransactionInfo(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	tx, err := decodeObject[blockscout.TransactionDetail](raw)
	if err != nil {
		return "", nil, err
	}
	block := tx.Block
	if block.Empty() {
		block = tx.BlockNumber
	}

	var b strings.Builder
	b.WriteString("**Transaction Details:**\n\n")
	if !tx.Hash.Empty() {
		fmt.Fprintf(&b, "**Hash:** %s\n", tx.Hash)
	}
	if tx.From.Hash != "" {
		fmt.Fprintf(&b, "**From:** %s\n", short(tx.From.Hash))
	}
	if tx.To.Hash != "" {
		fmt.Fprintf(&b, "**To:** %s\n", short(tx.To.Hash))
	}
	if !tx.Value.Empty() {
		fmt.Fprintf(&b, "**Value:** %s ETH\n", formatAmount(tx.Value.S, nativeDecimals))
	}
	if !tx.GasUsed.Empty() {
		fmt.Fprintf(&b, "**Gas Used:** %s\n", formatCount(tx.GasUsed))
	}
	if !tx.Status.Empty() {
		fmt.Fprintf(&b, "**Status:** %s\n", tx.Status)
	}
	if !block.Empty() {
		fmt.Fprintf(&b, "**Block:** %s\n", block)
	}
	if !tx.Timestamp.Empty() {
		fmt.Fprintf(&b, "**Time:** %s\n", formatTime(tx.Timestamp))
	}
	if !tx.Method.Empty() {
		fmt.Fprintf(&b, "**Method:** %s\n", tx.Method)
	}

	if n := len(tx.TokenTransfers); n > 0 {
		fmt.Fprintf(&b, "\n**Token Transfers (%d):**\n", n)
		for i, t := range tx.TokenTransfers[:min(n, nestedTransferCap)] {
			decimals := decimalsOf(t.Token.Decimals)
			if !t.Total.Decimals.Empty() {
				decimals = decimalsOf(t.Total.Decimals)
			}
			fmt.Fprintf(&b, "%d. %s %s\n", i+1, formatAmount(or(t.Total.Value, "0"), decimals), or(t.Token.Symbol, "tokens"))
		}
		if n > nestedTransferCap {
			fmt.Fprintf(&b, "Showing %d of %d transfers\n", nestedTransferCap, n)
		}
	}

	var viz *Visualization
	if !tx.Hash.Empty() {
		value := ""
		if !tx.Value.Empty() {
			value = formatAmount(tx.Value.S, nativeDecimals)
		}
		viz = &Visualization{Category: CategoryTransactionDetail, Data: TransactionSummary{
			Hash:      tx.Hash.S,
			From:      tx.From.Hash,
			To:        tx.To.Hash,
			Value:     value,
			Timestamp: tx.Timestamp.S,
			Status:    txStatus(tx.Status.S),
			Method:    tx.Method.S,
		}}
	}
	return b.String(), viz, nil
}

func formatTransactionLogs(env blockscout.Envelope, _ json.RawMessage) (string, *Visualization, error) {
	items, err := decodeList[blockscout.LogEntry](env)
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return "No logs found for this transaction.", nil, nil
	}

	var b strings.Builder
	b.WriteString("Transaction Logs:\n\n")
	for i, l := range items[:min(len(items), logCap)] {
		fmt.Fprintf(&b, "%d. Contract: %s\n", i+1, addrLabel(l.Address))
		if l.Decoded != nil && !l.Decoded.MethodCall.Empty() {
			fmt.Fprintf(&b, "   Event: %s\n", l.Decoded.MethodCall)
		}
		if len(l.Topics) > 0 && !l.Topics[0].Empty() {
			fmt.Fprintf(&b, "   Topic: %s\n", short(l.Topics[0].S))
		}
		if !l.BlockNumber.Empty() {
			fmt.Fprintf(&b, "   Block: %s\n", l.BlockNumber)
		}
		b.WriteString("\n")
	}
	footer(&b, logCap, len(items), "logs", env)
	return b.String(), nil, nil
}
