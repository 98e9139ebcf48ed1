package skilltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// algebraTree builds Algebra -> Linear Equations.
func algebraTree(t *testing.T, p Policy) (*Engine, ID, ID) {
	t.Helper()
	e := NewEngine(New(), p)
	a1, err := e.Add(RootID, "Algebra")
	require.NoError(t, err)
	a2, err := e.Add(a1, "Linear Equations")
	require.NoError(t, err)
	return e, a1, a2
}

func completed(t *testing.T, e *Engine, id ID) bool {
	t.Helper()
	n, err := e.Tree().Get(id)
	require.NoError(t, err)
	return n.Completed
}

func TestLeafOnly_ToggleLeafPropagatesUp(t *testing.T) {
	e, a1, a2 := algebraTree(t, PolicyLeafOnly)

	got, err := e.Toggle(a2)
	require.NoError(t, err)
	assert.True(t, got)
	assert.True(t, completed(t, e, a2))
	assert.True(t, completed(t, e, a1))

	got, err = e.Toggle(a2)
	require.NoError(t, err)
	assert.False(t, got)
	assert.False(t, completed(t, e, a2))
	assert.False(t, completed(t, e, a1))
}

func TestLeafOnly_RejectsInternalNode(t *testing.T) {
	e, a1, a2 := algebraTree(t, PolicyLeafOnly)
	before := snapshotAll(e.Tree())

	_, err := e.Toggle(a1)
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, before, snapshotAll(e.Tree()))

	err = e.Set(a1, true)
	require.ErrorIs(t, err, ErrRejected)
	assert.False(t, completed(t, e, a2))
}

func TestLeafOnly_ChildlessNodeIsALeaf(t *testing.T) {
	e := NewEngine(New(), PolicyLeafOnly)
	solo, err := e.Add(RootID, "Geometry")
	require.NoError(t, err)

	got, err := e.Toggle(solo)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCascade_ToggleParentCascadesDown(t *testing.T) {
	e, a1, a2 := algebraTree(t, PolicyCascade)

	got, err := e.Toggle(a1)
	require.NoError(t, err)
	assert.True(t, got)
	assert.True(t, completed(t, e, a2))

	got, err = e.Toggle(a1)
	require.NoError(t, err)
	assert.False(t, got)
	assert.False(t, completed(t, e, a2))
}

func TestCascade_OverwritesMixedDescendants(t *testing.T) {
	e := NewEngine(New(), PolicyCascade)
	root, _ := e.Add(RootID, "Math")
	mid, _ := e.Add(root, "Arithmetic")
	x, _ := e.Add(mid, "Counting")
	y, _ := e.Add(mid, "Adding")
	z, _ := e.Add(root, "Fractions")

	_, err := e.Toggle(x)
	require.NoError(t, err)
	assert.False(t, completed(t, e, mid))

	// Completing the top cascades to every node regardless of prior state.
	require.NoError(t, e.Set(root, true))
	for _, id := range []ID{root, mid, x, y, z} {
		assert.True(t, completed(t, e, id))
	}

	// Un-completing a middle node clears its subtree and its ancestors only.
	require.NoError(t, e.Set(mid, false))
	assert.False(t, completed(t, e, x))
	assert.False(t, completed(t, e, y))
	assert.False(t, completed(t, e, root))
	assert.True(t, completed(t, e, z))
}

func TestToggle_NotFound(t *testing.T) {
	for _, p := range AllPolicies() {
		e := NewEngine(New(), p)
		_, err := e.Toggle(123)
		assert.ErrorIs(t, err, ErrNotFound, p.String())
	}
}

func TestAdd_UncompletesAncestors(t *testing.T) {
	e, a1, a2 := algebraTree(t, PolicyLeafOnly)
	_, err := e.Toggle(a2)
	require.NoError(t, err)
	require.True(t, completed(t, e, a1))

	_, err = e.Add(a1, "Quadratics")
	require.NoError(t, err)
	assert.False(t, completed(t, e, a1))

	// Adding under a completed leaf turns it into an incomplete parent.
	_, err = e.Add(a2, "Slope")
	require.NoError(t, err)
	assert.False(t, completed(t, e, a2))
}

func TestDelete_RecomputesFormerParent(t *testing.T) {
	e := NewEngine(New(), PolicyLeafOnly)
	p, _ := e.Add(RootID, "Algebra")
	done, _ := e.Add(p, "Linear Equations")
	todo, _ := e.Add(p, "Quadratics")

	_, err := e.Toggle(done)
	require.NoError(t, err)
	require.False(t, completed(t, e, p))

	require.NoError(t, e.Delete(todo))
	assert.True(t, completed(t, e, p), "remaining child is complete")

	require.NoError(t, e.Delete(done))
	assert.False(t, completed(t, e, p), "childless former parent is incomplete")

	assert.ErrorIs(t, e.Delete(done), ErrNotFound)
}

func TestExpandCollapseAll(t *testing.T) {
	e, a1, a2 := algebraTree(t, PolicyCascade)

	e.CollapseAll()
	for _, id := range []ID{a1, a2} {
		n, _ := e.Tree().Get(id)
		assert.False(t, n.Expanded)
	}

	e.ExpandAll()
	for _, id := range []ID{a1, a2} {
		n, _ := e.Tree().Get(id)
		assert.True(t, n.Expanded)
	}
}

func TestReconcile(t *testing.T) {
	e, a1, a2 := algebraTree(t, PolicyCascade)
	assert.Zero(t, e.Reconcile())

	// Simulate a hand-edited file: parent marked done, child not.
	require.NoError(t, e.Tree().SetCompleted(a1, true))
	assert.Equal(t, 1, e.Reconcile())
	assert.False(t, completed(t, e, a1))

	require.NoError(t, e.Tree().SetCompleted(a2, true))
	assert.Equal(t, 1, e.Reconcile())
	assert.True(t, completed(t, e, a1))
}

func TestReset(t *testing.T) {
	e, a1, a2 := algebraTree(t, PolicyCascade)
	require.NoError(t, e.Set(a1, true))

	e.Reset()
	assert.False(t, completed(t, e, a1))
	assert.False(t, completed(t, e, a2))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyCascade, false},
		{"cascade", PolicyCascade, false},
		{"Bidirectional", PolicyCascade, false},
		{"leaf-only", PolicyLeafOnly, false},
		{"A", PolicyLeafOnly, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, p := range AllPolicies() {
		back, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, back)
	}
}

func snapshotAll(tr *Tree) []Node {
	var out []Node
	_ = tr.Walk(func(n Node, _ int) error {
		out = append(out, n)
		return nil
	})
	return out
}
