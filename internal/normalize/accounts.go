package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"chainlens-backend/internal/blockscout"
)

const (
	transferCap    = 8
	tokenCap       = 15
	transactionCap = 5
	nftCap         = 10
)

func formatTokenTransfers(env blockscout.Envelope, _ json.RawMessage) (string, *Visualization, error) {
	items, err := decodeList[blockscout.TokenTransfer](env)
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return "No token transfers found.", nil, nil
	}

	var b strings.Builder
	b.WriteString("Recent Token Transfers:\n\n")
	for i, t := range items[:min(len(items), transferCap)] {
		symbol := or(t.Token.Symbol, "Unknown Token")
		decimals := decimalsOf(t.Token.Decimals)
		if !t.Total.Decimals.Empty() {
			decimals = decimalsOf(t.Total.Decimals)
		}
		amount := scaledFloat(t.Total.Value.S, decimals)

		fmt.Fprintf(&b, "%d. %s\n", i+1, symbol)
		fmt.Fprintf(&b, "   Amount: %s %s\n", formatDecimal(amount, tokenDigits), or(t.Token.Symbol, "tokens"))
		if r, ok := rate(t.Token.ExchangeRate); ok {
			fmt.Fprintf(&b, "   Value: %s\n", formatUSD(amount*r))
		}
		fmt.Fprintf(&b, "   From: %s\n", addrLabel(t.Sender()))
		fmt.Fprintf(&b, "   To: %s\n", addrLabel(t.Recipient()))
		if !t.Method.Empty() {
			fmt.Fprintf(&b, "   Method: %s\n", t.Method)
		}
		if !t.Timestamp.Empty() {
			fmt.Fprintf(&b, "   Time: %s\n", formatTime(t.Timestamp))
		}
		b.WriteString("\n")
	}
	footer(&b, transferCap, len(items), "transfers", env)
	return b.String(), nil, nil
}

func formatTokens(env blockscout.Envelope, _ json.RawMessage) (string, *Visualization, error) {
	items, err := decodeList[blockscout.TokenBalance](env)
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return "No tokens found for this address.", nil, nil
	}

	var (
		b        strings.Builder
		total    float64
		shown    int
		holdings []TokenHolding
	)
	b.WriteString("Token Holdings:\n\n")
	for _, item := range items[:min(len(items), tokenCap)] {
		balance, ok := scale(or(item.Value, "0"), decimalsOf(item.Token.Decimals))
		if !ok || balance.Cmp(dust) <= 0 {
			continue
		}
		shown++
		amount, _ := balance.Float64()
		holding := TokenHolding{
			Name:    or(item.Token.Name, "Unknown"),
			Symbol:  or(item.Token.Symbol, "N/A"),
			Balance: amount,
		}

		fmt.Fprintf(&b, "%d. %s (%s)\n", shown, holding.Name, holding.Symbol)
		fmt.Fprintf(&b, "   Balance: %s\n", formatDecimal(amount, tokenDigits))
		if r, ok := rate(item.Token.ExchangeRate); ok {
			holding.ValueUSD = amount * r
			total += holding.ValueUSD
			fmt.Fprintf(&b, "   Value: %s\n", formatUSD(holding.ValueUSD))
		}
		b.WriteString("\n")
		holdings = append(holdings, holding)
	}
	if shown == 0 {
		b.WriteString("No balances above the dust threshold.\n\n")
	}
	if total > 0 {
		fmt.Fprintf(&b, "Total Portfolio Value: %s\n\n", formatUSD(total))
	}
	footer(&b, tokenCap, len(items), "tokens", env)
	return b.String(), portfolio(holdings, total), nil
}

func formatTransactions(env blockscout.Envelope, _ json.RawMessage) (string, *Visualization, error) {
	items, err := decodeList[blockscout.Transaction](env)
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return "No transactions found.", nil, nil
	}

	var b strings.Builder
	b.WriteString("Recent Transactions:\n\n")
	for i, tx := range items[:min(len(items), transactionCap)] {
		fmt.Fprintf(&b, "%d. Tx %s\n", i+1, short(tx.Hash.S))
		fmt.Fprintf(&b, "   From: %s\n", addrLabel(tx.Sender()))
		fmt.Fprintf(&b, "   To: %s\n", addrLabel(tx.Recipient()))
		fmt.Fprintf(&b, "   Value: %s ETH\n", formatAmount(or(tx.Value, "0"), nativeDecimals))
		if !tx.Method.Empty() {
			fmt.Fprintf(&b, "   Method: %s\n", tx.Method)
		}
		if !tx.Timestamp.Empty() {
			fmt.Fprintf(&b, "   Time: %s\n", formatTime(tx.Timestamp))
		}
		b.WriteString("\n")
	}
	footer(&b, transactionCap, len(items), "transactions", env)

	rows := make([]TransactionSummary, 0, min(len(items), chartTransactions))
	for _, tx := range items[:min(len(items), chartTransactions)] {
		rows = append(rows, TransactionSummary{
			Hash:      tx.Hash.S,
			From:      tx.Sender().Hash,
			To:        tx.Recipient().Hash,
			Value:     formatAmount(or(tx.Value, "0"), nativeDecimals),
			Timestamp: tx.Timestamp.S,
			Status:    txStatus(tx.Status.S),
			Method:    tx.Method.S,
		})
	}
	return b.String(), &Visualization{Category: CategoryTransactions, Data: rows}, nil
}

func formatAddressInfo(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	d, err := decodeObject[blockscout.AddressInfo](raw)
	if err != nil {
		return "", nil, err
	}
	view := AddressView{
		Hash:          d.Hash.S,
		Name:          d.Name.S,
		ENSDomainName: d.ENSDomainName.S,
		IsContract:    d.IsContract.Bool(),
		IsVerified:    d.IsVerified.Bool(),
	}

	var b strings.Builder
	b.WriteString("Address Information:\n\n")
	if !d.Hash.Empty() {
		fmt.Fprintf(&b, "Address: %s\n", short(d.Hash.S))
	}
	if !d.Name.Empty() {
		fmt.Fprintf(&b, "Name: %s\n", d.Name)
	}
	if !d.ENSDomainName.Empty() {
		fmt.Fprintf(&b, "ENS: %s\n", d.ENSDomainName)
	}
	if !d.CoinBalance.Empty() {
		view.Balance = formatAmount(d.CoinBalance.S, nativeDecimals)
		fmt.Fprintf(&b, "ETH Balance: %s ETH\n", view.Balance)
	}
	if view.IsContract {
		b.WriteString("Type: Smart Contract\n")
	} else {
		b.WriteString("Type: Wallet (EOA)\n")
	}
	if view.IsVerified {
		b.WriteString("Verified: Yes\n")
	}
	if !d.TransactionsCount.Empty() {
		view.TransactionsCount = formatCount(d.TransactionsCount)
		fmt.Fprintf(&b, "Total Transactions: %s\n", view.TransactionsCount)
	}
	return b.String(), &Visualization{Category: CategoryAddressInfo, Data: view}, nil
}

func formatNFTs(env blockscout.Envelope, _ json.RawMessage) (string, *Visualization, error) {
	items, err := decodeList[blockscout.NFTHolding](env)
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return "No NFTs found.", nil, nil
	}

	var b strings.Builder
	b.WriteString("NFT Holdings:\n\n")
	for i, n := range items[:min(len(items), nftCap)] {
		kind := or(n.Token.Type, or(n.Token.TokenType, "NFT"))
		fmt.Fprintf(&b, "%d. %s\n", i+1, or(n.Token.Name, "Unknown NFT"))
		fmt.Fprintf(&b, "   Collection: %s\n", or(n.Token.Symbol, "N/A"))
		if !n.ID.Empty() {
			fmt.Fprintf(&b, "   Token ID: %s\n", n.ID)
		}
		fmt.Fprintf(&b, "   Type: %s\n\n", kind)
	}
	footer(&b, nftCap, len(items), "NFTs", env)
	return b.String(), nil, nil
}

func formatENSName(_ blockscout.Envelope, raw json.RawMessage) (string, *Visualization, error) {
	d, err := decodeObject[struct {
		ResolvedAddress blockscout.Value `json:"resolved_address"`
	}](raw)
	if err != nil {
		return "", nil, err
	}
	if d.ResolvedAddress.Empty() {
		return "No address is registered for this name.", nil, nil
	}
	return fmt.Sprintf("ENS Resolution:\n\nResolved Address: %s\n", d.ResolvedAddress), nil, nil
}
