package normalize

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"chainlens-backend/internal/blockscout"
)

const (
	tokenDigits   = 6
	usdDigits     = 2
	summaryDigits = 8

	nativeDecimals = 18
	maxDecimals    = 77

	timeLayout = "2006-01-02 15:04:05 UTC"
)

var (
	printer = message.NewPrinter(language.English)
	dust    = big.NewFloat(0.000001)
)

// formatDecimal renders x with English digit grouping and at most maxFrac
// fraction digits.
func formatDecimal(x float64, maxFrac int) string {
	return printer.Sprintf("%v", number.Decimal(x, number.MaxFractionDigits(maxFrac)))
}

func formatUSD(x float64) string { return "$" + formatDecimal(x, usdDigits) }

// formatCount groups integer strings ("19000000" -> "19,000,000"); anything
// else is returned unchanged.
func formatCount(v blockscout.Value) string {
	s := strings.TrimSpace(v.S)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || !n.IsInt64() {
		return s
	}
	return printer.Sprintf("%v", number.Decimal(n.Int64()))
}

// decimalsOf reads a token's decimals. Zero is a valid count; absent or
// unparseable values fall back to 18.
func decimalsOf(v blockscout.Value) int {
	if v.Empty() {
		return nativeDecimals
	}
	d, err := strconv.Atoi(strings.TrimSpace(v.S))
	if err != nil || d < 0 || d > maxDecimals {
		return nativeDecimals
	}
	return d
}

// scale divides the raw integer amount by 10^decimals.
func scale(raw string, decimals int) (*big.Float, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return new(big.Float), false
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return new(big.Float), false
	}
	v := new(big.Float).SetPrec(256).SetInt(n)
	if decimals > 0 {
		pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
		v.Quo(v, new(big.Float).SetPrec(256).SetInt(pow))
	}
	return v, true
}

// scaledFloat is scale followed by a float64 conversion, 0 on bad input.
func scaledFloat(raw string, decimals int) float64 {
	v, _ := scale(raw, decimals)
	f, _ := v.Float64()
	return f
}

func formatAmount(raw string, decimals int) string {
	return formatDecimal(scaledFloat(raw, decimals), tokenDigits)
}

// rate returns the exchange rate when it is a positive number.
func rate(v blockscout.Value) (float64, bool) {
	if v.Empty() {
		return 0, false
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(v.S), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 0, false
	}
	return r, true
}

// short truncates an address or hash to its first 10 characters.
func short(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "Unknown"
	case len(s) <= 10:
		return s
	}
	return s[:10] + "..."
}

func addrLabel(a blockscout.AddressRef) string {
	if a.Hash != "" {
		return short(a.Hash)
	}
	if a.Name != "" {
		return a.Name
	}
	if a.ENSDomainName != "" {
		return a.ENSDomainName
	}
	return "Unknown"
}

// formatTime prints RFC3339 or unix-second timestamps in UTC. Other input is
// returned as is.
func formatTime(v blockscout.Value) string {
	s := strings.TrimSpace(v.S)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(timeLayout)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC().Format(timeLayout)
	}
	return s
}

func or(v blockscout.Value, fallback string) string {
	if v.Empty() {
		return fallback
	}
	return v.S
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
