// Package screen defines what the router stacks: one full-window view of
// the app, such as home, chat or the quiz.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/olive/internal/ui/layout"
)

// Screen is one page of the TUI. View draws only the content area; the app
// adds the header and footer around it.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string

	// Title is shown in the header while the screen is on top.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer is told when it is back on top after the screen above it was
// popped, so it can reread session state.
type Resumer interface {
	Resume() tea.Cmd
}
