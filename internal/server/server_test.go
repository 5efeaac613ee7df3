package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainlens-backend/internal/blockscout"
	"chainlens-backend/internal/config"
	"chainlens-backend/internal/ens"
	"chainlens-backend/internal/llm"
	"chainlens-backend/internal/types"
)

type fakeCompleter struct {
	reply   string
	err     error
	history []llm.Turn
	message string
}

func (f *fakeCompleter) Complete(_ context.Context, history []llm.Turn, message string) (string, error) {
	f.history = history
	f.message = message
	return f.reply, f.err
}

type fakeCaller struct {
	calls     []blockscout.Tool
	params    []blockscout.Params
	responses map[blockscout.Tool]string
	err       error
}

func (f *fakeCaller) Call(_ context.Context, tool blockscout.Tool, params blockscout.Params) (json.RawMessage, error) {
	f.calls = append(f.calls, tool)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.responses[tool]), nil
}

type fakeNames struct{ result ens.Result }

func (f fakeNames) ReplaceNames(context.Context, string) ens.Result { return f.result }

const vitalik = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func newTestServer(cfg config.Config, deps Deps) *httptest.Server {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	return httptest.NewServer(New(cfg, deps).Router())
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res, out
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res, out
}

func TestChat_validation(t *testing.T) {
	srv := newTestServer(config.Config{OpenAIAPIKey: "k"}, Deps{Completer: &fakeCompleter{}, Caller: &fakeCaller{}})
	defer srv.Close()

	for _, body := range []string{`{}`, `{"message":"   "}`, `{"message":42}`, `not json`} {
		res, out := postJSON(t, srv.URL+"/api/chat", body)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
		assert.Equal(t, "Message is required", out["error"], body)
	}
}

func TestChat_missingAPIKey(t *testing.T) {
	srv := newTestServer(config.Config{}, Deps{Completer: &fakeCompleter{}, Caller: &fakeCaller{}})
	defer srv.Close()

	res, out := postJSON(t, srv.URL+"/api/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "OpenAI API key not configured", out["error"])
}

func TestChat_completionFailure(t *testing.T) {
	fc := &fakeCaller{}
	srv := newTestServer(config.Config{OpenAIAPIKey: "k"}, Deps{
		Completer: &fakeCompleter{err: fmt.Errorf("%w: OpenAI error: rate limited", llm.ErrCompletion)},
		Caller:    fc,
	})
	defer srv.Close()

	res, out := postJSON(t, srv.URL+"/api/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, out["error"], "rate limited")
	assert.Empty(t, fc.calls)
}

func TestChat_plainText(t *testing.T) {
	fc := &fakeCaller{}
	comp := &fakeCompleter{reply: "Sure, here's some info about Ethereum."}
	srv := newTestServer(config.Config{OpenAIAPIKey: "k"}, Deps{Completer: comp, Caller: fc})
	defer srv.Close()

	res, out := postJSON(t, srv.URL+"/api/chat", `{"message":"what is ethereum?","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Sure, here's some info about Ethereum.", out["response"])
	assert.Equal(t, "text", out["type"])
	assert.Nil(t, out["data"])
	assert.NotContains(t, out, "tool")
	assert.Empty(t, fc.calls)
	assert.Len(t, comp.history, 2)
	assert.Equal(t, "what is ethereum?", comp.message)
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
}

func TestChat_clarification(t *testing.T) {
	fc := &fakeCaller{}
	srv := newTestServer(config.Config{OpenAIAPIKey: "k"}, Deps{
		Completer: &fakeCompleter{reply: `{"clarification_needed": true, "message": "Which chain?"}`},
		Caller:    fc,
	})
	defer srv.Close()

	_, out := postJSON(t, srv.URL+"/api/chat", `{"message":"show my balance"}`)
	assert.Equal(t, "clarification", out["type"])
	assert.Equal(t, "Which chain?", out["response"])
	assert.Empty(t, fc.calls)
}

func TestChat_chainedResolution(t *testing.T) {
	fc := &fakeCaller{responses: map[blockscout.Tool]string{
		blockscout.ToolAddressByENSName: `{"data":{"resolved_address":"` + vitalik + `"}}`,
		blockscout.ToolTokensByAddress:  `{"data":[{"token":{"name":"Ether","symbol":"ETH","decimals":"18","exchange_rate":"2000"},"value":"1000000000000000000"}]}`,
	}}
	srv := newTestServer(config.Config{OpenAIAPIKey: "k"}, Deps{
		Completer: &fakeCompleter{reply: `{"needs_resolution": true, "resolution_tool": "get_address_by_ens_name", "resolution_params": {"name": "vitalik.eth"}, "next_tool": "get_tokens_by_address", "next_params": {"chain_id": 1}}`},
		Caller:    fc,
	})
	defer srv.Close()

	res, out := postJSON(t, srv.URL+"/api/chat", `{"message":"tokens of vitalik.eth"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []blockscout.Tool{blockscout.ToolAddressByENSName, blockscout.ToolTokensByAddress}, fc.calls)
	assert.Equal(t, blockscout.Params{"chain_id": "1", "address": vitalik}, fc.params[1])
	assert.Equal(t, "get_tokens_by_address", out["type"])
	assert.Equal(t, "get_tokens_by_address", out["tool"])
	assert.Contains(t, out["response"], "Total Portfolio Value: $2,000")

	viz, ok := out["visualization"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "portfolio", viz["category"])
}

func TestChat_upstreamFailureStays200(t *testing.T) {
	fc := &fakeCaller{err: &blockscout.Error{Tool: blockscout.ToolLatestBlock, Status: 500, Body: "boom"}}
	srv := newTestServer(config.Config{OpenAIAPIKey: "k"}, Deps{
		Completer: &fakeCompleter{reply: `{"tool":"get_latest_block","params":{"chain_id":"1"}}`},
		Caller:    fc,
	})
	defer srv.Close()

	res, out := postJSON(t, srv.URL+"/api/chat", `{"message":"latest block"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "error", out["type"])
	assert.Contains(t, out["response"], "error")
	assert.Contains(t, out["response"], "Blockscout error 500: boom")
}

func TestChat_ensPreresolve(t *testing.T) {
	comp := &fakeCompleter{reply: "ok"}
	names := fakeNames{result: ens.Result{
		Text:         "balance of " + vitalik,
		Replacements: []ens.Replacement{{ENS: "vitalik.eth", Address: vitalik}},
		Errors:       []ens.Warning{},
	}}
	srv := newTestServer(config.Config{OpenAIAPIKey: "k", ENSPreresolve: true}, Deps{Completer: comp, Caller: &fakeCaller{}, Names: names})
	defer srv.Close()

	_, out := postJSON(t, srv.URL+"/api/chat", `{"message":"balance of vitalik.eth"}`)
	assert.Equal(t, "balance of "+vitalik, comp.message)
	reps, ok := out["ens_replacements"].([]any)
	require.True(t, ok)
	assert.Len(t, reps, 1)
	assert.NotContains(t, out, "ens_warnings")
}

func TestTools(t *testing.T) {
	fc := &fakeCaller{responses: map[blockscout.Tool]string{
		blockscout.ToolLatestBlock: `{"data":{"block_number":19000000}}`,
	}}
	srv := newTestServer(config.Config{}, Deps{Caller: fc})
	defer srv.Close()

	res, out := getJSON(t, srv.URL+"/api/tools")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, out["tools"], 16)

	res, out = getJSON(t, srv.URL+"/api/tools/get_latest_block?chain_id=1")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "get_latest_block", out["type"])
	assert.Contains(t, out["response"], "19,000,000")

	res, _ = getJSON(t, srv.URL+"/api/tools/get_weather")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, out = getJSON(t, srv.URL+"/api/tools/get_address_info?chain_id=1")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, out["error"], `"address"`)

	fc.err = errors.New("failed to fetch from Blockscout: timeout")
	res, out = getJSON(t, srv.URL+"/api/tools/get_latest_block?chain_id=1")
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Contains(t, out["error"], "timeout")
}

func TestENSResolveAndChains(t *testing.T) {
	names := fakeNames{result: ens.Result{Text: vitalik, Replacements: []ens.Replacement{{ENS: "vitalik.eth", Address: vitalik}}, Errors: []ens.Warning{}}}
	srv := newTestServer(config.Config{}, Deps{Caller: &fakeCaller{}, Names: names})
	defer srv.Close()

	res, out := postJSON(t, srv.URL+"/api/ens/resolve", `{"text":"vitalik.eth"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, vitalik, out["text"])

	res, _ = postJSON(t, srv.URL+"/api/ens/resolve", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, out = getJSON(t, srv.URL+"/api/chains")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	chains := out["chains"].([]any)
	require.Len(t, chains, len(types.SupportedChains))
	assert.Equal(t, "Ethereum", chains[0].(map[string]any)["name"])

	res, out = getJSON(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", out["status"])
}

func TestRecoverer(t *testing.T) {
	h := requestID(recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"error":"Failed to process request"}`, rec.Body.String())
}
