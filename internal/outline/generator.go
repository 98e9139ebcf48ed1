// Package outline asks a language model for a skill tree and turns the
// answer into treefile records through the same parser used for imported
// outlines.
package outline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/skilltree/internal/llm"
	"github.com/abhisek/skilltree/internal/treefile"
)

// ErrEmptyOutline is returned when the model produced no usable skills.
var ErrEmptyOutline = errors.New("generated outline is empty")

// Config tunes generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	MaxDepth    int
	MaxItems    int
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.3,
		MaxDepth:    4,
		MaxItems:    60,
	}
}

// Input describes the outline to generate. Zero MaxDepth and MaxItems use
// the generator's Config.
type Input struct {
	Topic    string
	MaxDepth int
	MaxItems int

	// Existing top-level labels the model should not repeat.
	Existing []string
	Notes    string
}

// Item is one entry of the model's flat answer.
type Item struct {
	Label string `json:"label"`
	Depth int    `json:"depth"`
}

type outlineOutput struct {
	Items []Item `json:"items"`
}

// Generator produces skill outlines with an llm.Provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// Generate asks the model for an outline of in.Topic.
func (g *Generator) Generate(ctx context.Context, in Input) ([]treefile.Record, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, errors.New("topic must not be empty")
	}
	cfg := g.config
	if in.MaxDepth > 0 {
		cfg.MaxDepth = in.MaxDepth
	}
	if in.MaxItems > 0 {
		cfg.MaxItems = in.MaxItems
	}

	ctx = llm.WithPurpose(ctx, "outline")
	req := llm.UserPrompt(systemPrompt, buildUserMessage(in, cfg))
	req.Schema = OutlineSchema
	req.MaxTokens = cfg.MaxTokens
	req.Temperature = cfg.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var out outlineOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	text := Render(Normalize(out.Items, cfg.MaxDepth, cfg.MaxItems))
	records, err := treefile.ParseOutline(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyOutline
	}
	return records, nil
}

// Normalize cleans a model answer so it renders to a well-formed outline:
// labels are single-line and lose any leading "- ", empty labels are
// dropped, the first item is top level, depth grows by at most one per item
// and stays below maxDepth, and at most maxItems are kept.
func Normalize(items []Item, maxDepth, maxItems int) []Item {
	out := make([]Item, 0, len(items))
	prev := -1
	for _, it := range items {
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
		label := strings.Join(strings.Fields(it.Label), " ")
		for strings.HasPrefix(label, "- ") {
			label = strings.TrimSpace(label[2:])
		}
		if label == "" || label == "-" {
			continue
		}
		depth := max(it.Depth, 0)
		depth = min(depth, prev+1)
		if maxDepth > 0 {
			depth = min(depth, maxDepth-1)
		}
		out = append(out, Item{Label: label, Depth: depth})
		prev = depth
	}
	return out
}

// Render writes items as an indented outline.
func Render(items []Item) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(strings.Repeat(" ", it.Depth*treefile.IndentWidth))
		b.WriteString(it.Label)
		b.WriteByte('\n')
	}
	return b.String()
}
