package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "OPENAI_MODEL", "BLOCKSCOUT_MCP_URL", "BLOCKSCOUT_TIMEOUT",
		"HISTORY_LIMIT", "ENS_PRERESOLVE", "OPENAI_TEMPERATURE",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-4", cfg.Model)
	assert.Equal(t, "https://mcp.blockscout.com/v1", cfg.BlockscoutURL)
	assert.Equal(t, 30*time.Second, cfg.BlockscoutTimeout)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.False(t, cfg.ENSPreresolve)
	assert.Equal(t, float32(0), cfg.Temperature)
}

func TestLoad_overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BLOCKSCOUT_TIMEOUT", "5")
	t.Setenv("COMPLETION_TIMEOUT", "90s")
	t.Setenv("HISTORY_LIMIT", "4")
	t.Setenv("ENS_PRERESOLVE", "yes")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.BlockscoutTimeout)
	assert.Equal(t, 90*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 4, cfg.HistoryLimit)
	assert.True(t, cfg.ENSPreresolve)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-6)
}

func TestGetEnvHelpers_invalidFallsBack(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")
	assert.Equal(t, 7, getEnvIntDefault("X_INT", 7))
	assert.True(t, getEnvBoolDefault("X_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDurationDefault("X_DUR", time.Minute))
}
