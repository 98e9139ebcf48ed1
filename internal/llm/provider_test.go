package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltree/internal/store"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-outline",
		Description: "A test outline",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"items": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"label": map[string]any{"type": "string", "minLength": 1},
							"depth": map[string]any{"type": "integer", "minimum": 0},
						},
						"required": []any{"label", "depth"},
					},
				},
			},
			"required": []any{"items"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"items":[{"label":"Algebra","depth":0}]}`, false},
		{"empty list", `{"items":[]}`, false},
		{"missing required", `{"items":[{"label":"Algebra"}]}`, true},
		{"wrong type", `{"items":[{"label":"Algebra","depth":"zero"}]}`, true},
		{"negative depth", `{"items":[{"label":"Algebra","depth":-1}]}`, true},
		{"not json", `Here is your outline`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			require.True(t, errors.As(err, &inv), "got %T", err)
			assert.Equal(t, tt.raw, string(inv.Content))
		})
	}

	assert.NoError(t, validateResponse(nil, json.RawMessage(`anything`)))
}

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
	)
	mock.AddResponse(MockResponse{Content: json.RawMessage(`{"b":2}`)})

	resp, err := mock.Generate(context.Background(), UserPrompt("sys", "first"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 10, resp.Usage.InputTokens)
	assert.Equal(t, "end", resp.StopReason)

	resp, err = mock.Generate(context.Background(), UserPrompt("sys", "second"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(resp.Content))

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail))

	require.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
	assert.Equal(t, "first", mock.Calls[0].Messages[0].Content)
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"items":"nope"}`)})
	req := UserPrompt("", "x")
	req.Schema = testSchema()

	_, err := mock.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	assert.True(t, errors.As(err, &inv))
}

type recordingEventRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, repo)
	ctx := WithPurpose(context.Background(), "outline")

	_, err := p.Generate(ctx, Request{System: "be brief", Messages: []Message{{Role: RoleUser, Content: "Algebra"}}, Schema: &Schema{Name: "s", Definition: map[string]any{"type": "object"}}})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Len(t, repo.events, 2)
	first := repo.events[0]
	assert.Equal(t, "mock", first.Provider)
	assert.Equal(t, "outline", first.Purpose)
	assert.True(t, first.Success)
	assert.Equal(t, 7, first.InputTokens)
	assert.Equal(t, `{"ok":true}`, first.ResponseBody)
	assert.Contains(t, first.RequestBody, "[system]\nbe brief")
	assert.Contains(t, first.RequestBody, "[user]\nAlgebra")
	assert.Contains(t, first.RequestBody, "[schema: s]")

	second := repo.events[1]
	assert.False(t, second.Success)
	assert.Contains(t, second.ErrorMessage, "down")
}

func TestLoggingProvider_RepoFailureDoesNotFailRequest(t *testing.T) {
	repo := &recordingEventRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), repo)

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Len(t, repo.events, 1)
}

func TestWithLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider()
	assert.Same(t, Provider(mock), WithLogging(mock, nil))
}

func TestPurposeFrom(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "outline", PurposeFrom(WithPurpose(context.Background(), "outline")))
}
