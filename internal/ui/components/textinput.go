package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skilltree/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling and an optional
// validation step run on Submit.
type TextInput struct {
	Model    textinput.Model
	Validate func(string) error
	err      error
}

// NewTextInput creates a new focused text input.
func NewTextInput(placeholder, initial string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Any edit clears a previous validation error.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		t.err = nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input and the last validation error.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.err != nil {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.err.Error())
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Submit runs Validate on the current value and remembers the error for
// View. It returns the error.
func (t *TextInput) Submit() error {
	t.err = nil
	if t.Validate != nil {
		t.err = t.Validate(t.Model.Value())
	}
	return t.err
}

// Err returns the last validation error.
func (t TextInput) Err() error {
	return t.err
}
