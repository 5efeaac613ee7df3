package ens

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSubgraphURL = "https://api.thegraph.com/subgraphs/name/ensdomains/ens"
	DefaultTimeout     = 10 * time.Second
	DefaultCacheSize   = 512
	DefaultCacheTTL    = 10 * time.Minute

	zeroAddress = "0x0000000000000000000000000000000000000000"
)

var (
	ErrNotENSName = errors.New("not an ENS name")
	ErrNotFound   = errors.New("ENS name not found")
	ErrUnresolved = errors.New("ENS name not resolved to an address")
)

var namePattern = regexp.MustCompile(`\b[a-zA-Z0-9-]+\.eth\b`)

const domainQuery = `query($name: String!) {
  domains(where: { name: $name }) {
    name
    id
    resolvedAddress {
      id
    }
  }
}`

// Replacement is one name substituted by its address.
type Replacement struct {
	ENS     string `json:"ens"`
	Address string `json:"address"`
}

// Warning is a name left in place because it could not be resolved.
type Warning struct {
	ENS   string `json:"ens"`
	Error string `json:"error"`
}

type Result struct {
	Text         string        `json:"text"`
	Replacements []Replacement `json:"replacements"`
	Errors       []Warning     `json:"errors"`
}

// NameReplacer rewrites .eth names in free text to addresses.
type NameReplacer interface {
	ReplaceNames(ctx context.Context, text string) Result
}

type Resolver struct {
	url   string
	http  *http.Client
	cache *expirable.LRU[string, string]
}

func NewResolver(url string, timeout time.Duration, cacheSize int, ttl time.Duration) *Resolver {
	if url == "" {
		url = DefaultSubgraphURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Resolver{
		url:   url,
		http:  &http.Client{Timeout: timeout},
		cache: expirable.NewLRU[string, string](cacheSize, nil, ttl),
	}
}

// ExtractNames returns the distinct .eth names in text in order of first
// appearance.
func ExtractNames(text string) []string {
	matches := namePattern.FindAllString(text, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		names = append(names, m)
	}
	return names
}

type graphResponse struct {
	Data struct {
		Domains []struct {
			Name            string `json:"name"`
			ID              string `json:"id"`
			ResolvedAddress *struct {
				ID string `json:"id"`
			} `json:"resolvedAddress"`
		} `json:"domains"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Resolve looks name up in the ENS subgraph. Successful lookups are cached.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasSuffix(key, ".eth") {
		return "", ErrNotENSName
	}
	if addr, ok := r.cache.Get(key); ok {
		return addr, nil
	}

	body, err := json.Marshal(map[string]any{
		"query":     domainQuery,
		"variables": map[string]string{"name": key},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to resolve ENS name: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("Graph API error: %d", res.StatusCode)
	}

	var gr graphResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode graph response: %w", err)
	}
	if len(gr.Errors) > 0 {
		msg := gr.Errors[0].Message
		if msg == "" {
			msg = "GraphQL error"
		}
		return "", errors.New(msg)
	}
	if len(gr.Data.Domains) == 0 {
		return "", ErrNotFound
	}
	resolved := gr.Data.Domains[0].ResolvedAddress
	if resolved == nil || resolved.ID == "" || resolved.ID == zeroAddress {
		return "", ErrUnresolved
	}
	r.cache.Add(key, resolved.ID)
	return resolved.ID, nil
}

// ReplaceNames substitutes every resolvable name in text. Failures are
// reported in Errors and leave the name untouched.
func (r *Resolver) ReplaceNames(ctx context.Context, text string) Result {
	res := Result{Text: text, Replacements: []Replacement{}, Errors: []Warning{}}
	for _, name := range ExtractNames(text) {
		addr, err := r.Resolve(ctx, name)
		if err != nil {
			log.Printf("[ens] %s: %v", name, err)
			res.Errors = append(res.Errors, Warning{ENS: name, Error: err.Error()})
			continue
		}
		exact := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		res.Text = exact.ReplaceAllLiteralString(res.Text, addr)
		res.Replacements = append(res.Replacements, Replacement{ENS: name, Address: addr})
	}
	return res
}
