package skilltree

import (
	"fmt"
	"slices"
	"strings"
)

// ID identifies a node within a Tree. IDs are never reused.
type ID int64

// RootID names the virtual root that owns the top-level nodes.
const RootID ID = 0

// node is the arena record for a single skill.
type node struct {
	id        ID
	label     string
	completed bool
	expanded  bool
	parent    ID
	children  []ID
}

// Node is a read-only snapshot of a skill.
type Node struct {
	ID         ID
	Parent     ID
	Label      string
	Completed  bool
	Expanded   bool
	ChildCount int
}

// IsLeaf reports whether the node had no children when the snapshot was taken.
func (n Node) IsLeaf() bool {
	return n.ChildCount == 0
}

// Tree owns an ordered forest of skills. The root is virtual: it holds the
// top-level order and carries no label or completion state.
type Tree struct {
	nodes  map[ID]*node
	roots  []ID
	nextID ID
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		nodes:  make(map[ID]*node),
		nextID: RootID + 1,
	}
}

// Insert appends a new incomplete, expanded skill under parent and returns
// its ID. Pass RootID to add a top-level skill. The label is stored as
// given; a blank one is rejected.
func (t *Tree) Insert(parent ID, label string) (ID, error) {
	if strings.TrimSpace(label) == "" {
		return 0, ErrEmptyLabel
	}

	var p *node
	if parent != RootID {
		var err error
		if p, err = t.lookup(parent); err != nil {
			return 0, err
		}
	}

	id := t.nextID
	t.nextID++
	t.nodes[id] = &node{
		id:       id,
		label:    label,
		expanded: true,
		parent:   parent,
	}

	if p == nil {
		t.roots = append(t.roots, id)
	} else {
		p.children = append(p.children, id)
	}
	return id, nil
}

// Children returns the ordered child IDs of id. RootID yields the top level.
func (t *Tree) Children(id ID) ([]ID, error) {
	if id == RootID {
		return slices.Clone(t.roots), nil
	}
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.children), nil
}

// Roots returns the ordered top-level IDs.
func (t *Tree) Roots() []ID {
	return slices.Clone(t.roots)
}

// Parent returns the parent of id, or RootID for a top-level skill.
func (t *Tree) Parent(id ID) (ID, error) {
	n, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return n.parent, nil
}

// Get returns a snapshot of the node.
func (t *Tree) Get(id ID) (Node, error) {
	n, err := t.lookup(id)
	if err != nil {
		return Node{}, err
	}
	return n.snapshot(), nil
}

// IsLeaf reports whether id currently has no children.
func (t *Tree) IsLeaf(id ID) (bool, error) {
	n, err := t.lookup(id)
	if err != nil {
		return false, err
	}
	return len(n.children) == 0, nil
}

// SetCompleted overwrites the completion flag of a single node. It does not
// propagate; use Engine for policy-aware changes.
func (t *Tree) SetCompleted(id ID, completed bool) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	n.completed = completed
	return nil
}

// SetExpanded sets the presentation-only expanded flag.
func (t *Tree) SetExpanded(id ID, expanded bool) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	n.expanded = expanded
	return nil
}

// Remove detaches id and drops its whole subtree. It returns the former
// parent so callers can recompute ancestors.
func (t *Tree) Remove(id ID) (ID, error) {
	n, err := t.lookup(id)
	if err != nil {
		return 0, err
	}

	if n.parent == RootID {
		t.roots = slices.DeleteFunc(t.roots, func(c ID) bool { return c == id })
	} else {
		p := t.nodes[n.parent]
		p.children = slices.DeleteFunc(p.children, func(c ID) bool { return c == id })
	}

	for _, d := range t.PreOrder(id) {
		delete(t.nodes, d)
	}
	return n.parent, nil
}

// Clear removes every node. The ID counter keeps counting so IDs handed out
// before the clear stay invalid.
func (t *Tree) Clear() {
	t.nodes = make(map[ID]*node)
	t.roots = nil
}

// Len returns the number of nodes, excluding the virtual root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) lookup(id ID) (*node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return n, nil
}

func (n *node) snapshot() Node {
	return Node{
		ID:         n.id,
		Parent:     n.parent,
		Label:      n.label,
		Completed:  n.completed,
		Expanded:   n.expanded,
		ChildCount: len(n.children),
	}
}
