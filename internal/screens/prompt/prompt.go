// Package prompt is a single-line input screen. It pops itself on submit
// and hands the value to the screen below as a message.
package prompt

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skilltree/internal/router"
	"github.com/abhisek/skilltree/internal/screen"
	"github.com/abhisek/skilltree/internal/ui/components"
	"github.com/abhisek/skilltree/internal/ui/layout"
	"github.com/abhisek/skilltree/internal/ui/theme"
)

// ErrEmpty is reported when a required value is blank.
var ErrEmpty = errors.New("value must not be empty")

const charLimit = 512

// Screen asks for one value.
type Screen struct {
	title    string
	question string
	input    components.TextInput
	onSubmit func(string) tea.Msg
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a prompt. onSubmit receives the trimmed value after the
// prompt is popped; its message is delivered to the screen below. Blank
// values are rejected.
func New(title, question, placeholder, initial string, onSubmit func(string) tea.Msg) *Screen {
	in := components.NewTextInput(placeholder, initial, charLimit)
	in.Validate = func(v string) error {
		if strings.TrimSpace(v) == "" {
			return ErrEmpty
		}
		return nil
	}
	return &Screen{title: title, question: question, input: in, onSubmit: onSubmit}
}

func (s *Screen) Init() tea.Cmd { return s.input.Init() }
func (s *Screen) Title() string { return s.title }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "OK"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// Value returns the text typed so far.
func (s *Screen) Value() string { return s.input.Value() }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if err := s.input.Submit(); err != nil {
				return s, nil
			}
			value := strings.TrimSpace(s.input.Value())
			pop := func() tea.Msg { return router.PopScreenMsg{} }
			if s.onSubmit == nil {
				return s, pop
			}
			return s, tea.Sequence(pop, func() tea.Msg { return s.onSubmit(value) })
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	w := min(max(width-8, 20), 72)
	s.input.Model.SetWidth(w - 6)

	body := theme.Title.Render(s.question) + "\n\n" + s.input.View()
	card := theme.Card.Width(w).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
