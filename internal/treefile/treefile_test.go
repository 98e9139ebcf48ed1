package treefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/abhisek/skilltree/internal/skilltree"
)

func sampleEngine(t *testing.T) *skilltree.Engine {
	t.Helper()
	e := skilltree.NewEngine(skilltree.New(), skilltree.PolicyCascade)
	algebra, err := e.Add(skilltree.RootID, "Algebra")
	require.NoError(t, err)
	linear, err := e.Add(algebra, "Linear Equations")
	require.NoError(t, err)
	_, err = e.Add(algebra, "Quadratics")
	require.NoError(t, err)
	geometry, err := e.Add(skilltree.RootID, "Geometry")
	require.NoError(t, err)

	_, err = e.Toggle(linear)
	require.NoError(t, err)
	require.NoError(t, e.Tree().SetExpanded(geometry, false))
	return e
}

func TestRoundTrip(t *testing.T) {
	e := sampleEngine(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, e.Tree()))

	loaded := skilltree.New()
	require.NoError(t, Decode(&buf, loaded))
	assert.Equal(t, FromTree(e.Tree()), FromTree(loaded))
}

func TestEncode_Layout(t *testing.T) {
	tr := skilltree.New()
	_, err := tr.Insert(skilltree.RootID, "Algebra")
	require.NoError(t, err)

	data, err := Marshal(tr)
	require.NoError(t, err)

	want := `{
    "children": [
        {
            "label": "Algebra",
            "completed": false,
            "expanded": true,
            "children": []
        }
    ]
}`
	assert.Equal(t, want, string(data))
}

func TestDecode_Defaults(t *testing.T) {
	tr := skilltree.New()
	require.NoError(t, Decode(strings.NewReader(`[{"label": "Algebra", "extra": 1}]`), tr))

	got := FromTree(tr)
	require.Len(t, got, 1)
	assert.Equal(t, Record{Label: "Algebra", Completed: false, Expanded: true, Children: []Record{}}, got[0])
}

func TestRoundTrip_PaddedLabels(t *testing.T) {
	tr := skilltree.New()
	doc := `[{"label": "  Algebra ", "completed": false, "expanded": true,
		"children": [{"label": "Linear Equations\t", "completed": true, "expanded": true}]}]`
	require.NoError(t, Decode(strings.NewReader(doc), tr))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tr))
	again, err := Unmarshal(buf.Bytes())
	require.NoError(t, err)

	require.Len(t, again, 1)
	assert.Equal(t, "  Algebra ", again[0].Label)
	require.Len(t, again[0].Children, 1)
	assert.Equal(t, "Linear Equations\t", again[0].Children[0].Label)
	assert.Equal(t, FromTree(tr), again)
}

func TestDecode_LegacyKeys(t *testing.T) {
	legacy := `{
    "children": [
        {
            "text": "Arithmetic & Pre-Algebra",
            "completed": true,
            "open": false,
            "children": [
                {"text": "Counting", "completed": true, "open": true, "children": []}
            ]
        }
    ]
}`
	tr := skilltree.New()
	require.NoError(t, Decode(strings.NewReader(legacy), tr))

	want := []Record{{
		Label:     "Arithmetic & Pre-Algebra",
		Completed: true,
		Expanded:  false,
		Children: []Record{
			{Label: "Counting", Completed: true, Expanded: true, Children: []Record{}},
		},
	}}
	assert.Equal(t, want, FromTree(tr))
}

func TestDecode_FailureLeavesTreeUntouched(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"malformed", `{"children": [`},
		{"null", `null`},
		{"missing label", `[{"completed": true}]`},
		{"nested missing label", `[{"label": "A", "children": [{"expanded": true}]}]`},
		{"wrong type", `[{"label": "A", "completed": "yes"}]`},
		{"blank label", `[{"label": "   "}]`},
		{"scalar", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sampleEngine(t)
			before := FromTree(e.Tree())

			err := Decode(strings.NewReader(tt.input), e.Tree())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLoad))
			var le *LoadError
			assert.True(t, errors.As(err, &le))
			assert.Equal(t, before, FromTree(e.Tree()))
		})
	}
}

func TestSaveLoad_File(t *testing.T) {
	e := sampleEngine(t)
	path := filepath.Join(t.TempDir(), "nested", "tree.json")

	require.NoError(t, Save(path, e.Tree()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")

	loaded := skilltree.New()
	require.NoError(t, LoadFile(path, loaded))
	assert.Equal(t, FromTree(e.Tree()), FromTree(loaded))
}

func TestLoad_MissingFile(t *testing.T) {
	tr := skilltree.New()
	err := Load(filepath.Join(t.TempDir(), "nope.json"), tr)
	require.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSave_UnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	e := sampleEngine(t)
	before := FromTree(e.Tree())

	err := Save(filepath.Join(blocker, "tree.json"), e.Tree())
	require.ErrorIs(t, err, ErrSave)
	assert.Equal(t, before, FromTree(e.Tree()))
}

func TestParseOutline_ThreeLevels(t *testing.T) {
	records, err := ParseOutline(strings.NewReader("Math\n  Arithmetic\n  - Counting\n"))
	require.NoError(t, err)

	want := []Record{{
		Label:    "Math",
		Expanded: true,
		Children: []Record{{
			Label:    "Arithmetic",
			Expanded: true,
			Children: []Record{{Label: "Counting", Expanded: true, Children: []Record{}}},
		}},
	}}
	assert.Equal(t, want, records)
}

func TestParseOutline_DedentReparentsUnderAncestor(t *testing.T) {
	input := strings.Join([]string{
		"Math",
		"  Arithmetic",
		"    Counting",
		"    Adding",
		"  Fractions",
		"",
		"   ",
		"\t\tHalves",
		"Science",
		"- Physics",
		"-",
	}, "\n")

	records, err := ParseOutline(strings.NewReader(input))
	require.NoError(t, err)

	// Two tabs are eight spaces: level 4. Nothing is open at level 3 after
	// "Fractions", so "Halves" goes to the top level.
	require.Equal(t, []string{"Math", "Halves", "Science"}, labels(records))
	math := records[0]
	require.Len(t, math.Children, 2)
	assert.Equal(t, "Arithmetic", math.Children[0].Label)
	assert.Equal(t, []string{"Counting", "Adding"}, labels(math.Children[0].Children))
	assert.Equal(t, "Fractions", math.Children[1].Label)
	science := records[2]
	assert.Equal(t, "Science", science.Label)
	assert.Equal(t, []string{"Physics"}, labels(science.Children))

	tr := skilltree.New()
	require.NoError(t, Replace(tr, records))
	halves, err := tr.Lookup("Halves")
	require.NoError(t, err)
	parent, _ := tr.Parent(halves)
	assert.Equal(t, skilltree.RootID, parent)
}

func TestImportOutline_AllIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "math.txt")
	require.NoError(t, os.WriteFile(path, []byte("Math\r\n  Arithmetic\r\n  - Counting\r\n"), 0o644))

	tr := skilltree.New()
	require.NoError(t, LoadFile(path, tr))
	assert.Equal(t, 3, tr.Len())
	assert.Zero(t, tr.Stats().CompletedNodes)
}

func TestOutline_StructureSurvivesJSON(t *testing.T) {
	input := "Math\n  Arithmetic\n  - Counting\n  Fractions\nScience\n"
	imported := skilltree.New()
	records, err := ParseOutline(strings.NewReader(input))
	require.NoError(t, err)
	require.NoError(t, Replace(imported, records))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, imported))
	reloaded := skilltree.New()
	require.NoError(t, Decode(&buf, reloaded))
	assert.Equal(t, FromTree(imported), FromTree(reloaded))

	var out bytes.Buffer
	require.NoError(t, WriteOutline(&out, reloaded))
	again, err := ParseOutline(&out)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := skilltree.NewEngine(skilltree.New(), skilltree.PolicyCascade)
		var ids []skilltree.ID
		n := rapid.IntRange(0, 30).Draw(rt, "nodes")
		for i := 0; i < n; i++ {
			parent := skilltree.RootID
			if pick := rapid.IntRange(0, len(ids)).Draw(rt, "parent"); pick > 0 {
				parent = ids[pick-1]
			}
			label := rapid.StringMatching(` {0,2}[A-Za-z][A-Za-z0-9 &'/-]{0,20}[A-Za-z0-9]? {0,2}`).Draw(rt, "label")
			id, err := e.Add(parent, label)
			if err != nil {
				rt.Fatalf("add %q: %v", label, err)
			}
			ids = append(ids, id)
		}
		for _, id := range ids {
			if rapid.Bool().Draw(rt, "toggle") {
				_, _ = e.Toggle(id)
			}
			if rapid.Bool().Draw(rt, "collapse") {
				_ = e.Tree().SetExpanded(id, false)
			}
		}

		var buf bytes.Buffer
		if err := Encode(&buf, e.Tree()); err != nil {
			rt.Fatalf("encode: %v", err)
		}
		loaded := skilltree.New()
		if err := Decode(&buf, loaded); err != nil {
			rt.Fatalf("decode: %v", err)
		}
		want, got := FromTree(e.Tree()), FromTree(loaded)
		if fmt.Sprint(want) != fmt.Sprint(got) {
			rt.Fatalf("round trip mismatch:\nwant %v\ngot  %v", want, got)
		}
	})
}

func labels(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Label)
	}
	return out
}
