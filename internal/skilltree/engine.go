package skilltree

import "fmt"

// Engine applies completion changes to a Tree under a Policy and keeps the
// invariant that an internal node is complete iff all its children are.
//
// Engine is not safe for concurrent use.
type Engine struct {
	tree   *Tree
	policy Policy
}

// NewEngine wraps t. A nil tree starts empty.
func NewEngine(t *Tree, p Policy) *Engine {
	if t == nil {
		t = New()
	}
	return &Engine{tree: t, policy: p}
}

// Tree returns the underlying tree for reads and presentation-only changes.
func (e *Engine) Tree() *Tree {
	return e.tree
}

// Policy returns the active policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// SetPolicy switches the policy for subsequent toggles.
func (e *Engine) SetPolicy(p Policy) {
	e.policy = p
}

// Toggle flips the completion of id and propagates it. It returns the new
// state of id.
func (e *Engine) Toggle(id ID) (bool, error) {
	n, err := e.tree.lookup(id)
	if err != nil {
		return false, err
	}
	want := !n.completed
	if err := e.apply(n, want); err != nil {
		return n.completed, err
	}
	return want, nil
}

// Set drives id to the given state under the active policy. Setting a node
// to the state it already has is a no-op.
func (e *Engine) Set(id ID, completed bool) error {
	n, err := e.tree.lookup(id)
	if err != nil {
		return err
	}
	if n.completed == completed {
		return nil
	}
	return e.apply(n, completed)
}

func (e *Engine) apply(n *node, completed bool) error {
	switch e.policy {
	case PolicyLeafOnly:
		if len(n.children) > 0 {
			return fmt.Errorf("%w: %q is not a leaf; only skills without sub-skills can be marked",
				ErrRejected, n.label)
		}
		n.completed = completed

	case PolicyCascade:
		n.completed = completed
		for _, d := range e.tree.Descendants(n.id) {
			e.tree.nodes[d].completed = completed
		}

	default:
		return fmt.Errorf("%w: unknown policy %v", ErrRejected, e.policy)
	}

	e.propagateUp(n.parent)
	return nil
}

// Add inserts a new skill under parent (RootID for top level). The new skill
// starts incomplete, so completed ancestors are recomputed.
func (e *Engine) Add(parent ID, label string) (ID, error) {
	id, err := e.tree.Insert(parent, label)
	if err != nil {
		return 0, err
	}
	e.propagateUp(parent)
	return id, nil
}

// Delete removes id with its subtree and recomputes the former ancestors.
// A parent left without children becomes incomplete.
func (e *Engine) Delete(id ID) error {
	parent, err := e.tree.Remove(id)
	if err != nil {
		return err
	}
	e.propagateUp(parent)
	return nil
}

// ExpandAll marks every node expanded.
func (e *Engine) ExpandAll() {
	e.setAllExpanded(true)
}

// CollapseAll marks every node collapsed.
func (e *Engine) CollapseAll() {
	e.setAllExpanded(false)
}

func (e *Engine) setAllExpanded(v bool) {
	for _, id := range e.tree.PreOrder(RootID) {
		e.tree.nodes[id].expanded = v
	}
}

// Reset marks every skill incomplete.
func (e *Engine) Reset() {
	for _, n := range e.tree.nodes {
		n.completed = false
	}
}

// Reconcile recomputes every internal node bottom-up and returns how many
// nodes changed. Trees built only through the Engine are already
// consistent, so it returns 0 for them.
func (e *Engine) Reconcile() int {
	changed := 0
	for _, id := range e.tree.PostOrder(RootID) {
		n := e.tree.nodes[id]
		if len(n.children) == 0 {
			continue
		}
		if want := e.allChildrenComplete(n); want != n.completed {
			n.completed = want
			changed++
		}
	}
	return changed
}

// propagateUp recomputes from id up to its top-level ancestor.
func (e *Engine) propagateUp(id ID) {
	for id != RootID {
		n := e.tree.nodes[id]
		n.completed = e.allChildrenComplete(n)
		id = n.parent
	}
}

// allChildrenComplete is the AND rule. A node without children is never
// complete by the rule.
func (e *Engine) allChildrenComplete(n *node) bool {
	if len(n.children) == 0 {
		return false
	}
	for _, c := range n.children {
		if !e.tree.nodes[c].completed {
			return false
		}
	}
	return true
}
