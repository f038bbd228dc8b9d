// Package testing provides test utilities for TUI components.
package testing

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// TestRenderer drives a Bubble Tea model without a terminal and keeps the
// last rendered frame.
type TestRenderer struct {
	Model    tea.Model
	Output   string
	Commands []tea.Cmd
}

// NewTestRenderer wraps model and renders its first frame.
func NewTestRenderer(model tea.Model) *TestRenderer {
	r := &TestRenderer{Model: model}
	r.Output = model.View()
	return r
}

// Send delivers msgs in order. Returned commands are recorded, not run.
func (r *TestRenderer) Send(msgs ...tea.Msg) *TestRenderer {
	for _, msg := range msgs {
		next, cmd := r.Model.Update(msg)
		r.Model = next
		if cmd != nil {
			r.Commands = append(r.Commands, cmd)
		}
	}
	r.Output = r.Model.View()
	return r
}

// Type sends text as one key press per rune.
func (r *TestRenderer) Type(text string) *TestRenderer {
	for _, ch := range text {
		r.Send(KeyPress(string(ch)))
	}
	return r
}

// Plain returns the last frame without ANSI codes.
func (r *TestRenderer) Plain() string {
	return StripANSI(r.Output)
}

// Lines returns the plain frame split by newlines.
func (r *TestRenderer) Lines() []string {
	return strings.Split(r.Plain(), "\n")
}
