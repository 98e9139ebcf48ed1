package skilltree

// Stats summarizes completion across the tree.
type Stats struct {
	Nodes           int
	Leaves          int
	CompletedLeaves int
	CompletedNodes  int
	TopLevel        int
}

// Percent returns the share of completed leaves in [0, 1]. An empty tree is 0.
func (s Stats) Percent() float64 {
	if s.Leaves == 0 {
		return 0
	}
	return float64(s.CompletedLeaves) / float64(s.Leaves)
}

// Stats counts nodes and completion.
func (t *Tree) Stats() Stats {
	s := Stats{Nodes: len(t.nodes), TopLevel: len(t.roots)}
	for _, n := range t.nodes {
		if n.completed {
			s.CompletedNodes++
		}
		if len(n.children) == 0 {
			s.Leaves++
			if n.completed {
				s.CompletedLeaves++
			}
		}
	}
	return s
}
