// Package history lists archived snapshots of the tree and lets the user
// restore one.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skilltree/internal/router"
	"github.com/abhisek/skilltree/internal/screen"
	"github.com/abhisek/skilltree/internal/store"
	"github.com/abhisek/skilltree/internal/ui/layout"
	"github.com/abhisek/skilltree/internal/ui/theme"
)

const listLimit = 100

// RestoreMsg asks the screen below to restore snapshot ID.
type RestoreMsg struct {
	ID string
}

type historyLoadedMsg struct {
	Snapshots []store.Snapshot
	Err       error
}

// Screen displays archived snapshots, newest first.
type Screen struct {
	repo      store.SnapshotRepo
	snapshots []store.Snapshot
	selected  int
	offset    int
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a history screen reading from repo.
func New(repo store.SnapshotRepo) *Screen {
	return &Screen{repo: repo}
}

func (s *Screen) Init() tea.Cmd {
	return func() tea.Msg {
		snaps, err := s.repo.List(context.Background(), listLimit)
		return historyLoadedMsg{Snapshots: snaps, Err: err}
	}
}

func (s *Screen) Title() string {
	return "History"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Restore"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.snapshots = msg.Snapshots
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.snapshots)-1 {
				s.selected++
			}
		case "enter":
			if s.selected >= len(s.snapshots) {
				return s, nil
			}
			id := s.snapshots[s.selected].ID
			return s, tea.Sequence(
				func() tea.Msg { return router.PopScreenMsg{} },
				func() tea.Msg { return RestoreMsg{ID: id} },
			)
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.snapshots) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No snapshots yet. Every save is archived here.")
	}

	visible := max(height-1, 1)
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+visible {
		s.offset = s.selected - visible + 1
	}

	var b strings.Builder
	b.WriteString("\n")
	end := min(s.offset+visible, len(s.snapshots))
	for i := s.offset; i < end; i++ {
		snap := s.snapshots[i]
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}

		line := fmt.Sprintf("%s%s  %s  %3d skills  %3d done  %s",
			prefix,
			shortID(snap.ID),
			snap.CreatedAt.Local().Format("Jan 02 15:04:05"),
			snap.Nodes,
			snap.Completed,
			snap.Path)
		b.WriteString(style.Render(layout.Truncate(line, width)))
		b.WriteString("\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
