// Package router keeps the stack of screens shown by the terminal UI. The
// tree screen sits at the bottom; prompts and the history browser are
// pushed over it and pop themselves when done.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skilltree/internal/screen"
)

// PushScreenMsg opens Screen over the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the top screen and returns to the one below.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen without growing the stack.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Router owns the screen stack. The bottom screen is never popped.
type Router struct {
	stack []screen.Screen
}

// New returns a Router showing base.
func New(base screen.Screen) *Router {
	return &Router{stack: []screen.Screen{base}}
}

// Push opens s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen unless it is the base.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	return nil
}

// Replace puts s in place of the top screen and returns its Init command.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(s)
	}
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// Active is the screen receiving input, or nil for an empty stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth is the number of open screens; 1 means only the base is showing.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages itself and hands everything else to
// the active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	active := r.Active()
	if active == nil {
		return nil
	}
	next, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

// View draws the active screen into the body area between header and
// footer.
func (r *Router) View(width, height int) string {
	if active := r.Active(); active != nil {
		return active.View(width, height)
	}
	return ""
}
