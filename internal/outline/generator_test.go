package outline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltree/internal/llm"
	"github.com/abhisek/skilltree/internal/treefile"
)

func labels(records []treefile.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Label)
	}
	return out
}

func TestGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"items":[
		{"label":"Algebra","depth":0},
		{"label":"Elementary Algebra","depth":1},
		{"label":"Linear Equations","depth":2},
		{"label":"Quadratics","depth":2},
		{"label":"Geometry","depth":0},
		{"label":"Triangles","depth":1}
	]}`)})
	g := New(mock, DefaultConfig())

	records, err := g.Generate(context.Background(), Input{
		Topic:    "  Mathematics ",
		Existing: []string{"Arithmetic"},
		Notes:    "high school level",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"Algebra", "Geometry"}, labels(records))
	require.Equal(t, []string{"Elementary Algebra"}, labels(records[0].Children))
	assert.Equal(t, []string{"Linear Equations", "Quadratics"}, labels(records[0].Children[0].Children))
	assert.Equal(t, []string{"Triangles"}, labels(records[1].Children))
	assert.False(t, records[0].Completed)
	assert.True(t, records[0].Expanded)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, OutlineSchema, req.Schema)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Topic: Mathematics\n")
	assert.Contains(t, msg, "- Arithmetic")
	assert.Contains(t, msg, "high school level")
}

func TestGenerate_RepairsDepthJumps(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"items":[
		{"label":"Deep start","depth":3},
		{"label":"- Child","depth":5},
		{"label":"   ","depth":1},
		{"label":"Next\ntop","depth":0}
	]}`)})
	g := New(mock, DefaultConfig())

	records, err := g.Generate(context.Background(), Input{Topic: "x"})
	require.NoError(t, err)
	require.Equal(t, []string{"Deep start", "Next top"}, labels(records))
	assert.Equal(t, []string{"Child"}, labels(records[0].Children))
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("empty topic", func(t *testing.T) {
		mock := llm.NewMockProvider()
		_, err := New(mock, DefaultConfig()).Generate(context.Background(), Input{Topic: " "})
		assert.Error(t, err)
		assert.Zero(t, mock.CallCount())
	})

	t.Run("provider failure", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
		_, err := New(mock, DefaultConfig()).Generate(context.Background(), Input{Topic: "x"})
		var unavail *llm.ErrProviderUnavailable
		assert.True(t, errors.As(err, &unavail))
	})

	t.Run("schema violation", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"items":[{"label":"A"}]}`)})
		_, err := New(mock, DefaultConfig()).Generate(context.Background(), Input{Topic: "x"})
		var inv *llm.ErrInvalidResponse
		assert.True(t, errors.As(err, &inv))
	})

	t.Run("nothing usable", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"items":[]}`)})
		_, err := New(mock, DefaultConfig()).Generate(context.Background(), Input{Topic: "x"})
		assert.ErrorIs(t, err, ErrEmptyOutline)
	})
}

func TestNormalize(t *testing.T) {
	items := []Item{
		{"A", 0}, {"B", 1}, {"C", 2}, {"D", 3}, {"E", 7}, {"F", -2}, {"G", 1},
	}

	got := Normalize(items, 3, 0)
	assert.Equal(t, []Item{
		{"A", 0}, {"B", 1}, {"C", 2}, {"D", 2}, {"E", 2}, {"F", 0}, {"G", 1},
	}, got)

	assert.Len(t, Normalize(items, 0, 4), 4)
}

func TestRender(t *testing.T) {
	text := Render([]Item{{"Math", 0}, {"Arithmetic", 1}, {"Counting", 2}})
	assert.Equal(t, "Math\n  Arithmetic\n    Counting\n", text)
}
