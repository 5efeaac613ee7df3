package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel        = openai.GPT4
	DefaultTemperature  = float32(0.7)
	DefaultMaxTokens    = 2000
	DefaultHistoryLimit = 10
)

// ErrCompletion marks failures of the completion service itself.
var ErrCompletion = errors.New("completion service error")

// Turn is one conversation message supplied by the caller.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer returns the model's raw reply to a message and its history.
type Completer interface {
	Complete(ctx context.Context, history []Turn, message string) (string, error)
}

type ClientConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	MaxTokens    int
	HistoryLimit int
	Timeout      time.Duration
}

type Client struct {
	client       *openai.Client
	system       string
	model        string
	temperature  float32
	maxTokens    int
	historyLimit int
	timeout      time.Duration
}

// NewClient wires an OpenAI chat client. Explicit config values win over the
// prompt's style block, which wins over the package defaults.
func NewClient(cfg ClientConfig, prompt *Prompt) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	c := &Client{
		client:       openai.NewClientWithConfig(oc),
		system:       prompt.Render(),
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		historyLimit: cfg.HistoryLimit,
		timeout:      cfg.Timeout,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.temperature <= 0 {
		c.temperature = prompt.Style.Temperature
	}
	if c.temperature <= 0 {
		c.temperature = DefaultTemperature
	}
	if c.maxTokens <= 0 {
		c.maxTokens = prompt.Style.MaxTokens
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.historyLimit <= 0 {
		c.historyLimit = DefaultHistoryLimit
	}
	return c
}

// BuildTranscript assembles system turn, the most recent valid history turns
// and the new user message. history is not modified.
func BuildTranscript(system string, history []Turn, message string, limit int) []openai.ChatCompletionMessage {
	valid := make([]Turn, 0, len(history))
	for _, t := range history {
		role := strings.ToLower(strings.TrimSpace(t.Role))
		if role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			continue
		}
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		valid = append(valid, Turn{Role: role, Content: t.Content})
	}
	if limit > 0 && len(valid) > limit {
		valid = valid[len(valid)-limit:]
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(valid)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, t := range valid {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
	return msgs
}

func (c *Client) Complete(ctx context.Context, history []Turn, message string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    BuildTranscript(c.system, history, message, c.historyLimit),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		log.Println("[llm] OpenAI error:", err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", fmt.Errorf("%w: OpenAI error: %s", ErrCompletion, apiErr.Message)
		}
		return "", fmt.Errorf("%w: OpenAI error: %v", ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrCompletion)
	}
	raw := resp.Choices[0].Message.Content
	log.Printf("[llm] raw reply: %s", short(raw))
	return raw, nil
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
