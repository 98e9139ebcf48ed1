package treefile

import (
	"fmt"
	"strings"

	"github.com/abhisek/skilltree/internal/skilltree"
)

// Record is the serialized form of one skill and its subtree.
type Record struct {
	Label     string   `json:"label"`
	Completed bool     `json:"completed"`
	Expanded  bool     `json:"expanded"`
	Children  []Record `json:"children"`
}

// document is the wrapper object written to disk. Its only job is holding
// the ordered top-level records; the virtual root is never a record.
type document struct {
	Children []Record `json:"children"`
}

// FromTree converts the whole forest into records, preserving order.
func FromTree(t *skilltree.Tree) []Record {
	return recordsOf(t, t.Roots())
}

func recordsOf(t *skilltree.Tree, ids []skilltree.ID) []Record {
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		n, err := t.Get(id)
		if err != nil {
			continue
		}
		children, _ := t.Children(id)
		out = append(out, Record{
			Label:     n.Label,
			Completed: n.Completed,
			Expanded:  n.Expanded,
			Children:  recordsOf(t, children),
		})
	}
	return out
}

// Replace validates records and, only if all of them are usable, clears
// into and rebuilds it from them. On error into is left untouched.
func Replace(into *skilltree.Tree, records []Record) error {
	if err := validateRecords(records, "$"); err != nil {
		return err
	}
	into.Clear()
	return build(into, skilltree.RootID, records)
}

// Graft validates records and appends them under parent (RootID for the top
// level), keeping the existing skills. It returns the ids of the grafted
// top-level records. Ancestors are not recomputed; callers holding an Engine
// reconcile afterwards.
func Graft(into *skilltree.Tree, parent skilltree.ID, records []Record) ([]skilltree.ID, error) {
	if err := validateRecords(records, "$"); err != nil {
		return nil, err
	}
	if parent != skilltree.RootID {
		if _, err := into.Get(parent); err != nil {
			return nil, err
		}
	}
	before, _ := into.Children(parent)
	if err := build(into, parent, records); err != nil {
		return nil, err
	}
	after, _ := into.Children(parent)
	return after[len(before):], nil
}

// Count returns the number of records including all descendants.
func Count(records []Record) int {
	n := len(records)
	for _, r := range records {
		n += Count(r.Children)
	}
	return n
}

func validateRecords(records []Record, path string) error {
	for i, r := range records {
		at := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(r.Label) == "" {
			return fmt.Errorf("%s: skill label must not be empty", at)
		}
		if err := validateRecords(r.Children, at+".children"); err != nil {
			return err
		}
	}
	return nil
}

func build(t *skilltree.Tree, parent skilltree.ID, records []Record) error {
	for _, r := range records {
		id, err := t.Insert(parent, r.Label)
		if err != nil {
			return fmt.Errorf("insert %q: %w", r.Label, err)
		}
		if err := t.SetCompleted(id, r.Completed); err != nil {
			return err
		}
		if err := t.SetExpanded(id, r.Expanded); err != nil {
			return err
		}
		if err := build(t, id, r.Children); err != nil {
			return err
		}
	}
	return nil
}
