// Package llm talks to hosted language models. Callers build a Request,
// optionally with a JSON Schema, and get back validated JSON.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is implemented by every backend and by the middleware that wraps
// them.
type Provider interface {
	// Generate sends one request. When req.Schema is set the returned
	// Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the backend name ("anthropic", "openai", ...).
	Name() string

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Request is a single-turn or short multi-turn prompt.
type Request struct {
	System    string
	Messages  []Message
	Schema    *Schema
	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON Schema a response must satisfy. Name is kebab-case and
// doubles as the cache key for the compiled schema.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output.
type Response struct {
	// Content is the JSON document when a schema was requested, the raw
	// text otherwise.
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage is the token count for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt is shorthand for a request with one user message.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
