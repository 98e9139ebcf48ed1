// Package screen defines what the router needs from a screen of the
// terminal UI.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skilltree/internal/ui/layout"
)

// Screen is one page of the UI: the tree, a prompt or the history list.
type Screen interface {
	Init() tea.Cmd

	// Update returns the screen to keep on the stack, which may be a new
	// value when the screen is a value type.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View draws the body only; the app frame adds header and footer.
	View(width, height int) string

	// Title is shown on the left of the header.
	Title() string
}

// KeyHintProvider is implemented by screens that list their keys in the
// footer.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens with a short status for the
// right of the header, such as the completion percentage.
type StatusProvider interface {
	HeaderStatus() string
}
