package blockscout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://mcp.blockscout.com/v1"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 200
)

var (
	ErrUnknownTool  = errors.New("unknown blockscout tool")
	ErrMissingParam = errors.New("missing required parameter")
)

// Error is returned when Blockscout answers with a non-2xx status.
type Error struct {
	Tool   Tool
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Blockscout error %d: %s", e.Status, e.Body)
}

// Caller executes a single Blockscout operation.
type Caller interface {
	Call(ctx context.Context, tool Tool, params Params) (json.RawMessage, error)
}

// Client calls the Blockscout MCP REST facade: GET <base>/<tool>?<params>.
type Client struct {
	httpClient *http.Client
	baseAPI    string
	timeout    time.Duration
}

// NewClient builds a client. A non-empty apiKey is sent as a bearer token,
// which self-hosted MCP gateways expect; the public endpoint needs none.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	if apiKey != "" {
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey}),
			Base:   http.DefaultTransport,
		}
	}
	return &Client{
		httpClient: hc,
		baseAPI:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
	}
}

// Validate checks the tool exists and every required parameter is present.
func Validate(tool Tool, params Params) error {
	spec, ok := byName[tool]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	for _, name := range spec.Required {
		if strings.TrimSpace(params[name]) == "" {
			return fmt.Errorf("%w %q for %s", ErrMissingParam, name, tool)
		}
	}
	return nil
}

func (c *Client) Call(ctx context.Context, tool Tool, params Params) (json.RawMessage, error) {
	if err := Validate(tool, params); err != nil {
		return nil, err
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u := c.baseAPI + "/" + url.PathEscape(string(tool))
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	log.Printf("[blockscout] %s %v", tool, params)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[blockscout] %s request failed: %v", tool, err)
		return nil, fmt.Errorf("failed to fetch from Blockscout: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from Blockscout: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[blockscout] %s status=%d body=%s", tool, resp.StatusCode, truncate(string(body), maxErrorBody))
		return nil, &Error{Tool: tool, Status: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), maxErrorBody)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("failed to fetch from Blockscout: invalid JSON from %s", tool)
	}
	return json.RawMessage(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
