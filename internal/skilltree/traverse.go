package skilltree

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SkipChildren may be returned by a WalkFunc to skip the descendants of the
// node just visited. It is not reported as an error.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every visited node with its depth (0 = top level).
type WalkFunc func(n Node, depth int) error

// Walk visits the whole forest in pre-order, honoring sibling order.
func (t *Tree) Walk(fn WalkFunc) error {
	type frame struct {
		id    ID
		depth int
	}

	stack := make([]frame, 0, len(t.roots))
	for i := len(t.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: t.roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[f.id]
		err := fn(n.snapshot(), f.depth)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}

		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.children[i], depth: f.depth + 1})
		}
	}
	return nil
}

// PreOrder returns id followed by all of its descendants in pre-order.
// RootID yields the whole forest. Unknown IDs yield nil.
func (t *Tree) PreOrder(id ID) []ID {
	var start []ID
	switch {
	case id == RootID:
		start = t.roots
	case t.nodes[id] != nil:
		start = []ID{id}
	default:
		return nil
	}

	var out []ID
	stack := slices.Clone(start)
	slices.Reverse(stack)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)

		children := t.nodes[cur].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// PostOrder returns the descendants of id in post-order followed by id
// itself. RootID yields the whole forest.
func (t *Tree) PostOrder(id ID) []ID {
	var out []ID
	var visit func(ID)
	visit = func(cur ID) {
		for _, c := range t.nodes[cur].children {
			visit(c)
		}
		out = append(out, cur)
	}

	switch {
	case id == RootID:
		for _, r := range t.roots {
			visit(r)
		}
	case t.nodes[id] != nil:
		visit(id)
	}
	return out
}

// Descendants returns every node below id in pre-order, excluding id.
func (t *Tree) Descendants(id ID) []ID {
	all := t.PreOrder(id)
	if id == RootID || len(all) == 0 {
		return all
	}
	return all[1:]
}

// Depth returns the number of ancestors of id (0 for a top-level skill).
func (t *Tree) Depth(id ID) (int, error) {
	n, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	depth := 0
	for n.parent != RootID {
		depth++
		n = t.nodes[n.parent]
	}
	return depth, nil
}

// Path returns the labels from the top level down to id, joined by "/".
func (t *Tree) Path(id ID) (string, error) {
	n, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	var parts []string
	for {
		parts = append(parts, n.label)
		if n.parent == RootID {
			break
		}
		n = t.nodes[n.parent]
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/"), nil
}

// Lookup resolves a user-supplied reference. A reference is first matched as
// a "/"-separated label path from the top level; failing that, the whole
// reference is matched against labels and the first hit in pre-order wins.
// "root" (any case) and the empty string resolve to RootID.
func (t *Tree) Lookup(ref string) (ID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, "root") || ref == "[Root Level]" {
		return RootID, nil
	}

	if id, ok := t.lookupPath(strings.Split(ref, "/")); ok {
		return id, nil
	}

	for _, id := range t.PreOrder(RootID) {
		if strings.TrimSpace(t.nodes[id].label) == ref {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNotFound, ref)
}

func (t *Tree) lookupPath(segments []string) (ID, bool) {
	level := t.roots
	var found ID
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		idx := slices.IndexFunc(level, func(c ID) bool { return strings.TrimSpace(t.nodes[c].label) == seg })
		if idx < 0 {
			return 0, false
		}
		found = level[idx]
		level = t.nodes[found].children
	}
	return found, found != RootID
}
