package normalize

import (
	"math"
	"sort"
	"strings"
)

// Visualization categories understood by the chat UI.
const (
	CategoryPortfolio         = "portfolio"
	CategoryTransactions      = "transactions"
	CategoryTransactionDetail = "transaction_detail"
	CategoryAddressInfo       = "address_info"
)

const (
	chartTokens       = 5
	chartTransactions = 10
)

var chartColors = []string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
}

// Visualization is the structured payload behind cards and charts.
type Visualization struct {
	Category string    `json:"category"`
	Data     any       `json:"data"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type Metadata struct {
	Address   string `json:"address,omitempty"`
	ChainID   string `json:"chain_id,omitempty"`
	ChainName string `json:"chain_name,omitempty"`
}

type TokenHolding struct {
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Balance    float64 `json:"balance"`
	ValueUSD   float64 `json:"value_usd"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

type PortfolioData struct {
	TotalValueUSD float64        `json:"total_value_usd"`
	Tokens        []TokenHolding `json:"tokens"`
	Address       string         `json:"address"`
	ChainID       string         `json:"chain_id"`
}

type TransactionSummary struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	Method    string `json:"method,omitempty"`
}

type AddressView struct {
	Hash              string `json:"hash,omitempty"`
	Name              string `json:"name,omitempty"`
	ENSDomainName     string `json:"ens_domain_name,omitempty"`
	Balance           string `json:"balance,omitempty"`
	IsContract        bool   `json:"is_contract"`
	IsVerified        bool   `json:"is_verified"`
	TransactionsCount string `json:"transactions_count,omitempty"`
}

// Annotate records which address and chain the data belongs to.
func (v *Visualization) Annotate(address, chainID, chainName string) {
	if v == nil {
		return
	}
	if address != "" || chainID != "" || chainName != "" {
		v.Metadata = &Metadata{Address: address, ChainID: chainID, ChainName: chainName}
	}
	if p, ok := v.Data.(*PortfolioData); ok {
		p.Address = address
		p.ChainID = chainID
	}
}

// portfolio keeps the largest holdings by USD value, each with its share of
// total. Holdings without a USD value are left out of the chart.
func portfolio(holdings []TokenHolding, total float64) *Visualization {
	if total <= 0 {
		return nil
	}
	priced := make([]TokenHolding, 0, len(holdings))
	for _, h := range holdings {
		if h.ValueUSD > 0 {
			priced = append(priced, h)
		}
	}
	sort.SliceStable(priced, func(i, j int) bool { return priced[i].ValueUSD > priced[j].ValueUSD })
	if len(priced) > chartTokens {
		priced = priced[:chartTokens]
	}
	for i := range priced {
		priced[i].Percentage = round2(priced[i].ValueUSD / total * 100)
		priced[i].ValueUSD = round2(priced[i].ValueUSD)
		priced[i].Color = chartColors[i%len(chartColors)]
	}
	return &Visualization{
		Category: CategoryPortfolio,
		Data:     &PortfolioData{TotalValueUSD: round2(total), Tokens: priced},
	}
}

// txStatus maps upstream status words onto success, failed or pending.
func txStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok", "success", "1":
		return "success"
	case "error", "failed", "failure", "0":
		return "failed"
	}
	return "pending"
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
