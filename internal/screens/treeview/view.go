package treeview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skilltree/internal/ui/components"
	"github.com/abhisek/skilltree/internal/ui/layout"
	"github.com/abhisek/skilltree/internal/ui/theme"
)

const indentWidth = 2

func (s *Screen) View(width, height int) string {
	st := s.sess.Stats()
	bar := components.NewProgressBar(
		fmt.Sprintf("%d of %d skills done", st.CompletedLeaves, st.Leaves),
		st.Percent(), true, max(width-4, 10),
	)

	// progress line, blank, rows..., blank, status line
	listHeight := max(height-4, 1)
	s.adjustScroll(listHeight)

	lines := []string{"  " + bar.View(), ""}
	if len(s.rows) == 0 {
		lines = append(lines, theme.Hint.Render("  No skills yet. Press a to add one or i to import an outline."))
	}
	end := min(s.offset+listHeight, len(s.rows))
	for i := s.offset; i < end; i++ {
		lines = append(lines, s.renderRow(i, width))
	}
	for len(lines) < listHeight+2 {
		lines = append(lines, "")
	}

	lines = append(lines, "", s.renderStatus(width))
	return strings.Join(lines, "\n")
}

// adjustScroll keeps the cursor inside the visible window.
func (s *Screen) adjustScroll(height int) {
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+height {
		s.offset = s.cursor - height + 1
	}
	if maxOffset := max(len(s.rows)-height, 0); s.offset > maxOffset {
		s.offset = maxOffset
	}
}

func (s *Screen) renderRow(i, width int) string {
	r := s.rows[i]
	n := r.node
	selected := i == s.cursor

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	fold := "  "
	if n.ChildCount > 0 {
		if n.Expanded {
			fold = "▾ "
		} else {
			fold = "▸ "
		}
	}

	mark := "[ ]"
	style := theme.Pending
	if n.Completed {
		mark = "[✓]"
		style = theme.Done
	}
	if selected {
		style = theme.Selected
	}

	label := n.Label
	if n.ChildCount > 0 && !n.Expanded {
		label += fmt.Sprintf(" (%d)", n.ChildCount)
	}

	indent := strings.Repeat(" ", r.depth*indentWidth)
	prefix := cursor + indent + theme.Guide.Render(fold)
	avail := width - lipgloss.Width(prefix) - len(mark) - 1
	return prefix + style.Render(mark+" "+layout.Truncate(label, avail))
}

func (s *Screen) renderStatus(width int) string {
	if s.status == "" {
		return ""
	}
	text := layout.Truncate("  "+s.status, width)
	if s.statusErr {
		return theme.StatusError.Render(text)
	}
	return theme.StatusInfo.Render(text)
}
