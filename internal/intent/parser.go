package intent

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"strconv"
	"strings"

	"chainlens-backend/internal/blockscout"
)

// rawDirective mirrors the JSON protocol described in the system prompt.
type rawDirective struct {
	ClarificationNeeded json.RawMessage            `json:"clarification_needed"`
	Message             json.RawMessage            `json:"message"`
	NeedsResolution     json.RawMessage            `json:"needs_resolution"`
	ResolutionTool      string                     `json:"resolution_tool"`
	ResolutionParams    map[string]json.RawMessage `json:"resolution_params"`
	NextTool            string                     `json:"next_tool"`
	NextParams          map[string]json.RawMessage `json:"next_params"`
	Tool                string                     `json:"tool"`
	Params              map[string]json.RawMessage `json:"params"`
	Explanation         string                     `json:"explanation"`
}

// Parse turns completion text into a Directive. It never fails: anything that
// is not a recognizable directive becomes PlainText carrying the whole text.
func Parse(text string) Directive {
	obj, ok := ExtractObject(text)
	if !ok {
		return PlainText{Text: text}
	}
	var raw rawDirective
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		log.Printf("[intent] reply is not a directive: %v", err)
		return PlainText{Text: text}
	}

	if truthy(raw.ClarificationNeeded) {
		msg := strings.TrimSpace(scalar(raw.Message))
		if msg == "" {
			return PlainText{Text: text}
		}
		return Clarification{Message: msg}
	}

	resTool := blockscout.Tool(strings.TrimSpace(raw.ResolutionTool))
	nextTool := blockscout.Tool(strings.TrimSpace(raw.NextTool))
	if truthy(raw.NeedsResolution) && resTool.Valid() && nextTool.Valid() {
		return ChainedCall{
			ResolutionTool:   resTool,
			ResolutionParams: coerceParams(raw.ResolutionParams),
			NextTool:         nextTool,
			NextParams:       coerceParams(raw.NextParams),
			Explanation:      raw.Explanation,
		}
	}

	tool := blockscout.Tool(strings.TrimSpace(raw.Tool))
	if tool.Valid() {
		return DirectCall{Tool: tool, Params: coerceParams(raw.Params), Explanation: raw.Explanation}
	}
	if raw.Tool != "" {
		log.Printf("[intent] unknown tool %q, answering with plain text", raw.Tool)
	}
	return PlainText{Text: text}
}

// ExtractObject returns the first balanced {...} substring of s. Braces inside
// JSON strings are skipped. When no balanced object exists but both braces
// are present, the span from the first '{' to the last '}' is returned.
func ExtractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	end := strings.LastIndexByte(s, '}')
	if end > start {
		return s[start : end+1], true
	}
	return "", false
}

// coerceParams renders every value as a string: the upstream API is
// string-typed, so chain ids like 1 must become "1".
func coerceParams(in map[string]json.RawMessage) blockscout.Params {
	out := make(blockscout.Params, len(in))
	for k, v := range in {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		out[k] = scalar(v)
	}
	return out
}

// scalar renders a JSON value as text: strings unquoted, numbers and
// booleans by their literal, objects and arrays as compact JSON.
func scalar(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}

// truthy accepts true, "true", and non-zero numbers.
func truthy(v json.RawMessage) bool {
	s := strings.ToLower(scalar(v))
	switch s {
	case "", "false", "0", "no":
		return false
	case "true", "yes":
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && f != 0
}
