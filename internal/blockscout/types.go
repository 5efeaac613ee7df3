package blockscout

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value holds a scalar the API may send either as a string or as a number.
// Valid is false when the field was absent or null.
type Value struct {
	S     string
	Valid bool
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value{S: s, Valid: true}
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		// Objects are not scalars; keep the compact JSON so nothing is lost.
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*v = Value{S: buf.String(), Valid: true}
		return nil
	}
	*v = Value{S: string(b), Valid: true}
	return nil
}

func (v Value) String() string { return v.S }

// Empty reports whether the value is absent, null or blank.
func (v Value) Empty() bool { return !v.Valid || strings.TrimSpace(v.S) == "" }

// Bool reports whether the value is the literal true (or "true").
func (v Value) Bool() bool { return v.Valid && strings.EqualFold(v.S, "true") }

// AddressRef is an address given either as a bare hash or as an object.
type AddressRef struct {
	Hash          string `json:"hash"`
	Name          string `json:"name"`
	ENSDomainName string `json:"ens_domain_name"`
}

func (a *AddressRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*a = AddressRef{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AddressRef{Hash: s}
		return nil
	}
	type plain AddressRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*a = AddressRef(p)
	return nil
}

// Envelope is the wrapper every MCP REST response uses.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	Items      json.RawMessage `json:"items"`
	Pagination *Pagination     `json:"pagination"`
}

type Pagination struct {
	NextCall json.RawMessage `json:"next_call"`
}

// HasNext reports whether the upstream offered a follow-up page.
func (p *Pagination) HasNext() bool {
	return p != nil && len(p.NextCall) > 0 && !bytes.Equal(bytes.TrimSpace(p.NextCall), []byte("null"))
}

// DecodeEnvelope parses raw into an Envelope, ignoring non-object bodies.
func DecodeEnvelope(raw json.RawMessage) Envelope {
	var env Envelope
	_ = json.Unmarshal(raw, &env)
	return env
}

// Payload returns the "data" member when present and non-null, else raw.
func Payload(raw json.RawMessage) json.RawMessage {
	env := DecodeEnvelope(raw)
	if isPresent(env.Data) {
		return env.Data
	}
	return raw
}

// List returns the list payload: "data", then "items", then nothing.
func (e Envelope) List() json.RawMessage {
	if isPresent(e.Data) {
		return e.Data
	}
	if isPresent(e.Items) {
		return e.Items
	}
	return nil
}

func isPresent(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && !bytes.Equal(b, []byte("null"))
}

type Token struct {
	Address      Value `json:"address"`
	Name         Value `json:"name"`
	Symbol       Value `json:"symbol"`
	Decimals     Value `json:"decimals"`
	Type         Value `json:"type"`
	TokenType    Value `json:"token_type"`
	ExchangeRate Value `json:"exchange_rate"`
	Verified     Value `json:"is_smart_contract_verified"`
}

type TokenTransfer struct {
	Token       Token      `json:"token"`
	Total       TotalValue `json:"total"`
	FromAddress AddressRef `json:"from_address"`
	ToAddress   AddressRef `json:"to_address"`
	From        AddressRef `json:"from"`
	To          AddressRef `json:"to"`
	Method      Value      `json:"method"`
	Timestamp   Value      `json:"timestamp"`
	TxHash      Value      `json:"transaction_hash"`
}

// Sender prefers from_address and falls back to from.
func (t TokenTransfer) Sender() AddressRef { return firstAddr(t.FromAddress, t.From) }

func (t TokenTransfer) Recipient() AddressRef { return firstAddr(t.ToAddress, t.To) }

type TotalValue struct {
	Value    Value `json:"value"`
	Decimals Value `json:"decimals"`
}

// TokenBalance is one holding; some responses nest the token, some flatten it.
type TokenBalance struct {
	Token Token
	Value Value
}

func (tb *TokenBalance) UnmarshalJSON(b []byte) error {
	var nested struct {
		Token   *Token `json:"token"`
		Value   Value  `json:"value"`
		Balance Value  `json:"balance"`
	}
	if err := json.Unmarshal(b, &nested); err != nil {
		return err
	}
	tb.Value = nested.Value
	if tb.Value.Empty() {
		tb.Value = nested.Balance
	}
	if nested.Token != nil {
		tb.Token = *nested.Token
		return nil
	}
	return json.Unmarshal(b, &tb.Token)
}

type Transaction struct {
	Hash        Value      `json:"hash"`
	FromAddress AddressRef `json:"from_address"`
	ToAddress   AddressRef `json:"to_address"`
	From        AddressRef `json:"from"`
	To          AddressRef `json:"to"`
	Value       Value      `json:"value"`
	Method      Value      `json:"method"`
	Timestamp   Value      `json:"timestamp"`
	Status      Value      `json:"status"`
	Fee         Value      `json:"fee"`
}

func (t Transaction) Sender() AddressRef { return firstAddr(t.FromAddress, t.From) }

func (t Transaction) Recipient() AddressRef { return firstAddr(t.ToAddress, t.To) }

type TransactionDetail struct {
	Hash           Value           `json:"hash"`
	From           AddressRef      `json:"from"`
	To             AddressRef      `json:"to"`
	Value          Value           `json:"value"`
	GasUsed        Value           `json:"gas_used"`
	Status         Value           `json:"status"`
	Block          Value           `json:"block"`
	BlockNumber    Value           `json:"block_number"`
	Timestamp      Value           `json:"timestamp"`
	Method         Value           `json:"method"`
	TokenTransfers []TokenTransfer `json:"token_transfers"`
}

type AddressInfo struct {
	Hash              Value `json:"hash"`
	Name              Value `json:"name"`
	ENSDomainName     Value `json:"ens_domain_name"`
	CoinBalance       Value `json:"coin_balance"`
	IsContract        Value `json:"is_contract"`
	IsVerified        Value `json:"is_verified"`
	TransactionsCount Value `json:"transactions_count"`
}

type SummaryItem struct {
	Template  string                     `json:"summary_template"`
	Variables map[string]SummaryVariable `json:"summary_template_variables"`
}

type SummaryVariable struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type Block struct {
	Height            Value      `json:"height"`
	BlockNumber       Value      `json:"block_number"`
	Hash              Value      `json:"hash"`
	Timestamp         Value      `json:"timestamp"`
	GasUsed           Value      `json:"gas_used"`
	GasLimit          Value      `json:"gas_limit"`
	BaseFeePerGas     Value      `json:"base_fee_per_gas"`
	TransactionsCount Value      `json:"transactions_count"`
	TransactionCount  Value      `json:"transaction_count"`
	Miner             AddressRef `json:"miner"`
}

// Number returns height, falling back to block_number.
func (b Block) Number() Value {
	if !b.Height.Empty() {
		return b.Height
	}
	return b.BlockNumber
}

type Chain struct {
	ID      Value `json:"id"`
	ChainID Value `json:"chain_id"`
	Name    Value `json:"name"`
}

type NFTHolding struct {
	Token Token
	ID    Value
}

func (n *NFTHolding) UnmarshalJSON(b []byte) error {
	var nested struct {
		Token *Token `json:"token"`
		ID    Value  `json:"id"`
	}
	if err := json.Unmarshal(b, &nested); err != nil {
		return err
	}
	n.ID = nested.ID
	if nested.Token != nil {
		n.Token = *nested.Token
		return nil
	}
	return json.Unmarshal(b, &n.Token)
}

type LogEntry struct {
	Address     AddressRef `json:"address"`
	BlockNumber Value      `json:"block_number"`
	Index       Value      `json:"index"`
	Topics      []Value    `json:"topics"`
	Decoded     *struct {
		MethodCall Value `json:"method_call"`
		MethodID   Value `json:"method_id"`
	} `json:"decoded"`
}

type ABIEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type ContractCode struct {
	Name            Value    `json:"name"`
	Language        Value    `json:"language"`
	CompilerVersion Value    `json:"compiler_version"`
	VerifiedAt      Value    `json:"verified_at"`
	Files           []string `json:"source_code_tree_structure"`
	FileContent     Value    `json:"file_content"`
}

func firstAddr(a, b AddressRef) AddressRef {
	if a.Hash != "" || a.Name != "" || a.ENSDomainName != "" {
		return a
	}
	return b
}
