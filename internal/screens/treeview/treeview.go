// Package treeview is the main screen: the skill tree as an outline the
// user walks with the keyboard. Every gesture is one call into the session.
package treeview

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/abhisek/skilltree/internal/router"
	"github.com/abhisek/skilltree/internal/screen"
	"github.com/abhisek/skilltree/internal/screens/history"
	"github.com/abhisek/skilltree/internal/screens/prompt"
	"github.com/abhisek/skilltree/internal/session"
	"github.com/abhisek/skilltree/internal/skilltree"
	"github.com/abhisek/skilltree/internal/store"
	"github.com/abhisek/skilltree/internal/ui/layout"
)

// Messages sent back by the prompt screens.
type (
	addMsg struct {
		parent skilltree.ID
		label  string
	}
	saveAsMsg struct{ path string }
	loadMsg   struct{ path string }
	importMsg struct{ path string }
)

type row struct {
	node  skilltree.Node
	depth int
}

// Screen shows the visible rows of the tree. Rows are the pre-order walk
// with the children of collapsed skills left out.
type Screen struct {
	ctx     context.Context
	sess    *session.Session
	history store.SnapshotRepo

	rows   []row
	cursor int
	offset int

	status    string
	statusErr bool

	// armed holds a destructive key ("q" or "d") waiting for confirmation.
	armed string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// New creates the tree screen. repo may be nil, which hides the
// history view. ctx carries the logger and is passed to session IO.
func New(ctx context.Context, sess *session.Session, repo store.SnapshotRepo) *Screen {
	s := &Screen{ctx: ctx, sess: sess, history: repo}
	s.refresh(0)
	return s
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string {
	name := "untitled"
	if p := s.sess.Path(); p != "" {
		name = filepath.Base(p)
	}
	if s.sess.Dirty() {
		name += " *"
	}
	return name
}

// HeaderStatus shows overall completion.
func (s *Screen) HeaderStatus() string {
	st := s.sess.Stats()
	return fmt.Sprintf("%d%%  %d/%d", int(st.Percent()*100), st.CompletedLeaves, st.Leaves)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Space", Description: "Toggle"},
		{Key: "←→", Description: "Fold"},
		{Key: "a/A", Description: "Add"},
		{Key: "d", Description: "Delete"},
		{Key: "s/S", Description: "Save"},
		{Key: "o", Description: "Load"},
		{Key: "i", Description: "Import"},
	}
	if s.history != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "q", Description: "Quit"})
}

// Cursor returns the skill under the cursor, or false for an empty tree.
func (s *Screen) Cursor() (skilltree.Node, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return skilltree.Node{}, false
	}
	return s.rows[s.cursor].node, true
}

// Status returns the status line text and whether it reports an error.
func (s *Screen) Status() (string, bool) { return s.status, s.statusErr }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case addMsg:
		id, err := s.sess.Add(msg.parent, msg.label)
		if err != nil {
			s.fail(err)
			return s, nil
		}
		if msg.parent != skilltree.RootID {
			_ = s.sess.SetExpanded(msg.parent, true)
		}
		s.refresh(id)
		s.info("added %q", msg.label)

	case saveAsMsg:
		if err := s.sess.SaveAs(s.ctx, msg.path); err != nil {
			s.fail(err)
			return s, nil
		}
		s.info("saved %s", s.sess.Path())

	case loadMsg:
		if err := s.sess.Load(s.ctx, msg.path); err != nil {
			s.fail(err)
			return s, nil
		}
		s.refresh(0)
		s.info("loaded %s (%d skills)", msg.path, s.sess.Tree().Len())

	case importMsg:
		if err := s.sess.Import(s.ctx, msg.path); err != nil {
			s.fail(err)
			return s, nil
		}
		s.refresh(0)
		s.info("imported %s (%d skills)", msg.path, s.sess.Tree().Len())

	case history.RestoreMsg:
		snap, err := s.sess.Restore(s.ctx, msg.ID)
		if err != nil {
			s.fail(err)
			return s, nil
		}
		s.refresh(0)
		s.info("restored snapshot from %s", snap.CreatedAt.Local().Format("Jan 02 15:04"))

	case tea.KeyMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *Screen) handleKey(key string) tea.Cmd {
	armed := s.armed
	s.armed = ""

	switch key {
	case "up", "k":
		s.move(-1)
	case "down", "j":
		s.move(1)
	case "pgup":
		s.move(-10)
	case "pgdown":
		s.move(10)
	case "home", "g":
		s.move(-len(s.rows))
	case "end", "G":
		s.move(len(s.rows))

	case "enter", "space", " ":
		s.toggle()
	case "right", "l":
		s.expand()
	case "left", "h":
		s.collapse()
	case "E":
		s.sess.ExpandAll()
		s.refresh(s.cursorID())
		s.info("expanded all")
	case "C":
		s.sess.CollapseAll()
		s.refresh(s.cursorID())
		s.info("collapsed all")

	case "a":
		parent := skilltree.RootID
		where := "the top level"
		if n, ok := s.Cursor(); ok {
			parent = n.ID
			where = fmt.Sprintf("%q", n.Label)
		}
		return push(prompt.New("Add skill", "New skill under "+where, "skill name", "", func(v string) tea.Msg {
			return addMsg{parent: parent, label: v}
		}))
	case "A":
		return push(prompt.New("Add skill", "New top-level skill", "skill name", "", func(v string) tea.Msg {
			return addMsg{parent: skilltree.RootID, label: v}
		}))
	case "d":
		n, ok := s.Cursor()
		if !ok {
			return nil
		}
		if armed != "d" {
			s.armed = "d"
			s.warn("delete %q and its %d sub-skills? press d again", n.Label, len(s.sess.Tree().Descendants(n.ID)))
			return nil
		}
		s.delete(n)

	case "s":
		return s.save()
	case "S":
		return s.saveAsPrompt()
	case "o":
		return push(prompt.New("Load", "Load tree from file", "skilltree.json", "", func(v string) tea.Msg {
			return loadMsg{path: v}
		}))
	case "i":
		return push(prompt.New("Import", "Import an indented outline", "skills.txt", "", func(v string) tea.Msg {
			return importMsg{path: v}
		}))
	case "H":
		if s.history == nil {
			s.warn("snapshot history is disabled")
			return nil
		}
		return push(history.New(s.history))

	case "q":
		if s.sess.Dirty() && armed != "q" {
			s.armed = "q"
			s.warn("unsaved changes; press q again to quit without saving")
			return nil
		}
		return tea.Quit
	}
	return nil
}

func push(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *Screen) toggle() {
	n, ok := s.Cursor()
	if !ok {
		return
	}
	done, err := s.sess.Toggle(n.ID)
	if err != nil {
		s.fail(err)
		return
	}
	s.refresh(n.ID)
	if done {
		s.info("completed %q", n.Label)
	} else {
		s.info("reopened %q", n.Label)
	}
}

func (s *Screen) expand() {
	n, ok := s.Cursor()
	if !ok || n.ChildCount == 0 {
		return
	}
	if n.Expanded {
		s.move(1)
		return
	}
	if err := s.sess.SetExpanded(n.ID, true); err != nil {
		s.fail(err)
		return
	}
	s.refresh(n.ID)
}

// collapse folds the skill under the cursor, or moves to its parent when
// there is nothing to fold.
func (s *Screen) collapse() {
	n, ok := s.Cursor()
	if !ok {
		return
	}
	if n.ChildCount > 0 && n.Expanded {
		if err := s.sess.SetExpanded(n.ID, false); err != nil {
			s.fail(err)
			return
		}
		s.refresh(n.ID)
		return
	}
	if n.Parent != skilltree.RootID {
		s.refresh(n.Parent)
	}
}

func (s *Screen) delete(n skilltree.Node) {
	// Land on the first row after the deleted subtree, else the row above.
	next := n.Parent
	found := false
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].depth <= s.rows[s.cursor].depth {
			next, found = s.rows[i].node.ID, true
			break
		}
	}
	if !found && s.cursor > 0 {
		next = s.rows[s.cursor-1].node.ID
	}
	if err := s.sess.Delete(n.ID); err != nil {
		s.fail(err)
		return
	}
	s.refresh(next)
	s.info("deleted %q", n.Label)
}

func (s *Screen) save() tea.Cmd {
	err := s.sess.Save(s.ctx)
	switch {
	case errors.Is(err, session.ErrNoPath):
		return s.saveAsPrompt()
	case err != nil:
		s.fail(err)
	default:
		s.info("saved %s", s.sess.Path())
	}
	return nil
}

func (s *Screen) saveAsPrompt() tea.Cmd {
	initial := s.sess.Path()
	if initial == "" {
		initial = "skilltree.json"
	}
	return push(prompt.New("Save as", "Save tree to file", "skilltree.json", initial, func(v string) tea.Msg {
		return saveAsMsg{path: v}
	}))
}

func (s *Screen) move(delta int) {
	if len(s.rows) == 0 {
		return
	}
	s.cursor = min(max(s.cursor+delta, 0), len(s.rows)-1)
}

func (s *Screen) cursorID() skilltree.ID {
	if n, ok := s.Cursor(); ok {
		return n.ID
	}
	return skilltree.RootID
}

// refresh rebuilds the rows and puts the cursor on keep when it is
// visible, otherwise keeps the cursor index in range.
func (s *Screen) refresh(keep skilltree.ID) {
	s.rows = s.rows[:0]
	_ = s.sess.Tree().Walk(func(n skilltree.Node, depth int) error {
		s.rows = append(s.rows, row{node: n, depth: depth})
		if !n.Expanded {
			return skilltree.SkipChildren
		}
		return nil
	})

	if keep != skilltree.RootID {
		for i, r := range s.rows {
			if r.node.ID == keep {
				s.cursor = i
				return
			}
		}
	}
	s.cursor = min(max(s.cursor, 0), max(len(s.rows)-1, 0))
}

func (s *Screen) info(format string, args ...any) {
	s.status = fmt.Sprintf(format, args...)
	s.statusErr = false
	log.FromContext(s.ctx).Debug(s.status)
}

func (s *Screen) warn(format string, args ...any) {
	s.status = fmt.Sprintf(format, args...)
	s.statusErr = true
}

func (s *Screen) fail(err error) {
	s.status = errorText(err)
	s.statusErr = true
	log.FromContext(s.ctx).Warn("action failed", "err", err)
}

func errorText(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
