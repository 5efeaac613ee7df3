package blockscout

// Tool names one Blockscout MCP operation.
type Tool string

const (
	ToolChainsList            Tool = "get_chains_list"
	ToolAddressInfo           Tool = "get_address_info"
	ToolAddressByENSName      Tool = "get_address_by_ens_name"
	ToolTransactionsByAddress Tool = "get_transactions_by_address"
	ToolTokenTransfersByAddr  Tool = "get_token_transfers_by_address"
	ToolTokensByAddress       Tool = "get_tokens_by_address"
	ToolNFTTokensByAddress    Tool = "nft_tokens_by_address"
	ToolTransactionInfo       Tool = "get_transaction_info"
	ToolTransactionLogs       Tool = "get_transaction_logs"
	ToolTransactionSummary    Tool = "transaction_summary"
	ToolBlockInfo             Tool = "get_block_info"
	ToolLatestBlock           Tool = "get_latest_block"
	ToolLookupTokenBySymbol   Tool = "lookup_token_by_symbol"
	ToolContractABI           Tool = "get_contract_abi"
	ToolInspectContractCode   Tool = "inspect_contract_code"
	ToolReadContract          Tool = "read_contract"
)

// ToolSpec is the parameter schema of an operation.
type ToolSpec struct {
	Name     Tool     `json:"name"`
	Required []string `json:"required"`
	Optional []string `json:"optional,omitempty"`
}

var catalog = []ToolSpec{
	{Name: ToolChainsList},
	{Name: ToolAddressInfo, Required: []string{"chain_id", "address"}},
	{Name: ToolAddressByENSName, Required: []string{"name"}},
	{Name: ToolTransactionsByAddress, Required: []string{"chain_id", "address"}, Optional: []string{"age_from", "age_to", "methods", "cursor"}},
	{Name: ToolTokenTransfersByAddr, Required: []string{"chain_id", "address"}, Optional: []string{"age_from", "age_to", "token", "cursor"}},
	{Name: ToolTokensByAddress, Required: []string{"chain_id", "address"}, Optional: []string{"cursor"}},
	{Name: ToolNFTTokensByAddress, Required: []string{"chain_id", "address"}, Optional: []string{"cursor"}},
	{Name: ToolTransactionInfo, Required: []string{"chain_id", "transaction_hash"}, Optional: []string{"include_raw_input"}},
	{Name: ToolTransactionLogs, Required: []string{"chain_id", "transaction_hash"}, Optional: []string{"cursor"}},
	{Name: ToolTransactionSummary, Required: []string{"chain_id", "transaction_hash"}},
	{Name: ToolBlockInfo, Required: []string{"chain_id", "number_or_hash"}, Optional: []string{"include_transactions"}},
	{Name: ToolLatestBlock, Required: []string{"chain_id"}},
	{Name: ToolLookupTokenBySymbol, Required: []string{"chain_id", "symbol"}},
	{Name: ToolContractABI, Required: []string{"chain_id", "address"}},
	{Name: ToolInspectContractCode, Required: []string{"chain_id", "address"}, Optional: []string{"file_name"}},
	{Name: ToolReadContract, Required: []string{"chain_id", "address", "abi", "function_name"}, Optional: []string{"args", "block"}},
}

var byName = func() map[Tool]ToolSpec {
	m := make(map[Tool]ToolSpec, len(catalog))
	for _, s := range catalog {
		m[s.Name] = s
	}
	return m
}()

// Tools returns the operation catalog in a stable order.
func Tools() []ToolSpec {
	out := make([]ToolSpec, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the parameter schema for a tool name.
func Lookup(name string) (ToolSpec, bool) {
	s, ok := byName[Tool(name)]
	return s, ok
}

func (t Tool) Valid() bool {
	_, ok := byName[t]
	return ok
}

func (t Tool) String() string { return string(t) }

// Params are the query parameters of an operation call. Values are always
// strings; chain ids in particular must never be sent as numbers.
type Params map[string]string

// Clone returns a shallow copy that can be modified without touching p.
func (p Params) Clone() Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}
