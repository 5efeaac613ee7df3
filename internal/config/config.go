package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// OpenAI completion
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	Model             string
	Temperature       float32
	MaxTokens         int
	CompletionTimeout time.Duration
	// Path to a YAML prompt overriding the embedded default
	PromptFile string
	// Number of prior conversation turns forwarded to the model
	HistoryLimit int
	// Blockscout MCP
	BlockscoutURL     string
	BlockscoutAPIKey  string
	BlockscoutTimeout time.Duration
	// ENS subgraph lookups
	ENSSubgraphURL string
	ENSPreresolve  bool
	ENSCacheSize   int
	ENSCacheTTL    time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:              getEnvDefault("PORT", "8080"),
		AllowedOrigin:     getEnvDefault("ALLOWED_ORIGIN", "*"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		Model:             getEnvDefault("OPENAI_MODEL", "gpt-4"),
		Temperature:       getEnvFloatDefault("OPENAI_TEMPERATURE", 0),
		MaxTokens:         getEnvIntDefault("OPENAI_MAX_TOKENS", 0),
		CompletionTimeout: getEnvDurationDefault("COMPLETION_TIMEOUT", 60*time.Second),
		PromptFile:        os.Getenv("PROMPT_FILE"),
		HistoryLimit:      getEnvIntDefault("HISTORY_LIMIT", 10),
		BlockscoutURL:     getEnvDefault("BLOCKSCOUT_MCP_URL", "https://mcp.blockscout.com/v1"),
		BlockscoutAPIKey:  os.Getenv("BLOCKSCOUT_API_KEY"),
		BlockscoutTimeout: getEnvDurationDefault("BLOCKSCOUT_TIMEOUT", 30*time.Second),
		ENSSubgraphURL:    getEnvDefault("ENS_SUBGRAPH_URL", "https://api.thegraph.com/subgraphs/name/ensdomains/ens"),
		ENSPreresolve:     getEnvBoolDefault("ENS_PRERESOLVE", false),
		ENSCacheSize:      getEnvIntDefault("ENS_CACHE_SIZE", 512),
		ENSCacheTTL:       getEnvDurationDefault("ENS_CACHE_TTL", 10*time.Minute),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; chat requests will fail until provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("warning: %s=%q is not an integer; using %d", key, v, def)
	}
	return def
}

func getEnvFloatDefault(key string, def float32) float32 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
		log.Printf("warning: %s=%q is not a number; using %v", key, v, def)
	}
	return def
}

// getEnvDurationDefault accepts Go durations ("45s") or plain seconds ("45").
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("warning: %s=%q is not a duration; using %s", key, v, def)
	return def
}
