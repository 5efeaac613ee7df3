package types

import "strconv"

// Chain is a network offered in the chain selector.
type Chain struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var SupportedChains = []Chain{
	{ID: 1, Name: "Ethereum", Icon: "⟠", Color: "#627EEA"},
	{ID: 42161, Name: "Arbitrum", Icon: "◆", Color: "#28A0F0"},
	{ID: 10, Name: "Optimism", Icon: "●", Color: "#FF0420"},
	{ID: 137, Name: "Polygon", Icon: "⬢", Color: "#8247E5"},
}

// ChainName returns the display name for a chain id, or "" when the chain is
// not in the selector.
func ChainName(chainID string) string {
	id, err := strconv.Atoi(chainID)
	if err != nil {
		return ""
	}
	for _, c := range SupportedChains {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}
