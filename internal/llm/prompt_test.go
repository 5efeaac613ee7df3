package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompt_default(t *testing.T) {
	p, err := LoadPrompt("")
	require.NoError(t, err)
	assert.Len(t, p.Functions, 16)
	assert.InDelta(t, 0.7, p.Style.Temperature, 1e-6)
	assert.Equal(t, 2000, p.Style.MaxTokens)

	text := p.Render()
	assert.True(t, strings.HasPrefix(text, "You are ChainLens AI"))
	assert.Contains(t, text, "16. read_contract - Call a smart contract view function")
	assert.Contains(t, text, "   Parameters: none")
	assert.Contains(t, text, `- Base: "8453"`)
	assert.Contains(t, text, "ALL chain_id values MUST be strings")
	assert.Contains(t, text, `"clarification_needed": true`)
	assert.Contains(t, text, `"needs_resolution": true`)
}

func TestLoadPrompt_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, defaultPrompt, 0o600))
	p, err := LoadPrompt(path)
	require.NoError(t, err)
	assert.Len(t, p.Functions, 16)

	_, err = LoadPrompt(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParsePrompt_rejectsCatalogMismatch(t *testing.T) {
	_, err := ParsePrompt([]byte("system: hi\nfunctions:\n  - name: get_weather\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown function "get_weather"`)

	_, err = ParsePrompt([]byte("system: hi\nfunctions:\n  - name: get_chains_list\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not described")

	_, err = ParsePrompt([]byte("functions: []\n"))
	assert.Error(t, err)
}
