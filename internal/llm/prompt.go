package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"chainlens-backend/internal/blockscout"
)

//go:embed prompts/chainlens.yaml
var defaultPrompt []byte

// Prompt is the instruction contract sent as the system turn.
type Prompt struct {
	System    string `yaml:"system"`
	Functions []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Params      string `yaml:"params"`
		Returns     string `yaml:"returns"`
	} `yaml:"functions"`
	Chains []struct {
		Name string `yaml:"name"`
		ID   string `yaml:"id"`
	} `yaml:"chains"`
	Guidelines     []string `yaml:"guidelines"`
	Rules          []string `yaml:"rules"`
	ResponseFormat string   `yaml:"response_format"`
	Style          struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// LoadPrompt reads the prompt from path, or the embedded default when path is empty.
func LoadPrompt(path string) (*Prompt, error) {
	b := defaultPrompt
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return ParsePrompt(b)
}

// ParsePrompt decodes a YAML prompt and checks that its function list
// matches the Blockscout tool catalog exactly.
func ParsePrompt(b []byte) (*Prompt, error) {
	var p Prompt
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse prompt: %w", err)
	}
	if strings.TrimSpace(p.System) == "" {
		return nil, fmt.Errorf("parse prompt: system text is empty")
	}
	described := make(map[blockscout.Tool]bool, len(p.Functions))
	for _, f := range p.Functions {
		t := blockscout.Tool(f.Name)
		if !t.Valid() {
			return nil, fmt.Errorf("parse prompt: unknown function %q", f.Name)
		}
		described[t] = true
	}
	for _, spec := range blockscout.Tools() {
		if !described[spec.Name] {
			return nil, fmt.Errorf("parse prompt: function %q is not described", spec.Name)
		}
	}
	return &p, nil
}

// Render builds the full system instruction.
func (p *Prompt) Render() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.System))
	b.WriteString("\n\nCOMPREHENSIVE BLOCKSCOUT MCP TOOLS:\n")
	for i, f := range p.Functions {
		fmt.Fprintf(&b, "\n%d. %s - %s\n", i+1, f.Name, f.Description)
		params := strings.TrimSpace(f.Params)
		if params == "" {
			params = "none"
		}
		fmt.Fprintf(&b, "   Parameters: %s\n", params)
		if f.Returns != "" {
			fmt.Fprintf(&b, "   Returns: %s\n", f.Returns)
		}
	}
	if len(p.Chains) > 0 {
		b.WriteString("\nCOMMON CHAIN IDs (as strings):\n")
		for _, c := range p.Chains {
			fmt.Fprintf(&b, "- %s: %q\n", c.Name, c.ID)
		}
		b.WriteString("- Use get_chains_list for the complete list\n")
	}
	writeList(&b, "CONVERSATION GUIDELINES", p.Guidelines)
	writeList(&b, "IMPORTANT RULES", p.Rules)
	if rf := strings.TrimSpace(p.ResponseFormat); rf != "" {
		b.WriteString("\nRESPONSE FORMAT:\n")
		b.WriteString(rf)
		b.WriteString("\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
}
