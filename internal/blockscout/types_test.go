package blockscout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
		E Value `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"18","b":18,"c":null,"d":true}`), &v))
	assert.Equal(t, "18", v.A.String())
	assert.Equal(t, "18", v.B.String())
	assert.True(t, v.C.Empty())
	assert.True(t, v.D.Bool())
	assert.False(t, v.E.Valid)
}

func TestAddressRef_UnmarshalJSON(t *testing.T) {
	var v struct {
		From AddressRef `json:"from"`
		To   AddressRef `json:"to"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"from":"0xaaa","to":{"hash":"0xbbb","name":"Vault"}}`), &v))
	assert.Equal(t, "0xaaa", v.From.Hash)
	assert.Equal(t, "0xbbb", v.To.Hash)
	assert.Equal(t, "Vault", v.To.Name)
}

func TestTokenBalance_nestedAndFlat(t *testing.T) {
	var items []TokenBalance
	raw := `[{"token":{"symbol":"USDC","decimals":"6"},"value":"1000000"},{"symbol":"DAI","decimals":18,"balance":"5"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "USDC", items[0].Token.Symbol.String())
	assert.Equal(t, "1000000", items[0].Value.String())
	assert.Equal(t, "DAI", items[1].Token.Symbol.String())
	assert.Equal(t, "5", items[1].Value.String())
}

func TestEnvelope(t *testing.T) {
	env := DecodeEnvelope(json.RawMessage(`{"data":[1],"pagination":{"next_call":{"tool_name":"x"}}}`))
	assert.True(t, env.Pagination.HasNext())
	assert.JSONEq(t, `[1]`, string(env.List()))

	env = DecodeEnvelope(json.RawMessage(`{"items":[2],"pagination":{"next_call":null}}`))
	assert.False(t, env.Pagination.HasNext())
	assert.JSONEq(t, `[2]`, string(env.List()))

	assert.JSONEq(t, `{"a":1}`, string(Payload(json.RawMessage(`{"data":{"a":1}}`))))
	assert.JSONEq(t, `{"b":1}`, string(Payload(json.RawMessage(`{"b":1}`))))
	assert.JSONEq(t, `{"data":null}`, string(Payload(json.RawMessage(`{"data":null}`))))
}
