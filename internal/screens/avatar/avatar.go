// Package avatar is the avatar picker.
package avatar

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/router"
	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/ui/components"
	"github.com/abhisek/olive/internal/ui/layout"
	"github.com/abhisek/olive/internal/ui/theme"
)

const columns = 6

// AvatarScreen shows the emoji grid plus a field for a custom emoji.
type AvatarScreen struct {
	sess     *session.Session
	choices  []string
	selected int
	custom   bool
	input    components.TextInput
	errMsg   string
}

var _ screen.Screen = (*AvatarScreen)(nil)
var _ screen.KeyHintProvider = (*AvatarScreen)(nil)

// New creates an AvatarScreen with the learner's current avatar selected.
func New(sess *session.Session) *AvatarScreen {
	a := &AvatarScreen{sess: sess, choices: session.AvatarChoices}
	current := sess.Avatar()
	for i, c := range a.choices {
		if c == current {
			a.selected = i
		}
	}
	return a
}

func (a *AvatarScreen) Init() tea.Cmd { return nil }

func (a *AvatarScreen) Title() string { return "Pick Your Avatar" }

func (a *AvatarScreen) KeyHints() []layout.KeyHint {
	if a.custom {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Use emoji"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "←↑↓→", Description: "Move"},
		{Key: "Enter", Description: "Pick"},
		{Key: "C", Description: "Custom"},
		{Key: "Esc", Description: "Back"},
	}
}

func (a *AvatarScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if a.custom {
		return a.updateCustom(msg)
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch kmsg.String() {
	case "left", "h":
		if a.selected > 0 {
			a.selected--
		}
	case "right", "l":
		if a.selected < len(a.choices)-1 {
			a.selected++
		}
	case "up", "k":
		if a.selected-columns >= 0 {
			a.selected -= columns
		}
	case "down", "j":
		if a.selected+columns < len(a.choices) {
			a.selected += columns
		}
	case "c", "C":
		a.custom = true
		a.errMsg = ""
		a.input = components.NewTextInput("Type or paste an emoji", session.MaxAvatarRunes)
		return a, a.input.Init()
	case "enter":
		return a, a.choose(a.choices[a.selected])
	}
	return a, nil
}

func (a *AvatarScreen) updateCustom(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return a, a.choose(strings.TrimSpace(a.input.Value()))
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *AvatarScreen) choose(avatar string) tea.Cmd {
	if err := a.sess.SetAvatar(context.Background(), avatar); err != nil {
		a.errMsg = err.Error()
		return nil
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (a *AvatarScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	cell := lipgloss.NewStyle().Width(4).Align(lipgloss.Center)
	selectedCell := cell.Border(lipgloss.RoundedBorder()).BorderForeground(theme.ArcadeYellow).Width(4)
	plainCell := cell.Border(lipgloss.HiddenBorder()).Width(4)

	var rows []string
	for start := 0; start < len(a.choices); start += columns {
		end := min(start+columns, len(a.choices))
		var cells []string
		for i := start; i < end; i++ {
			style := plainCell
			if i == a.selected && !a.custom {
				style = selectedCell
			}
			cells = append(cells, style.Render(a.choices[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	sections := []string{
		theme.Title.Render("Who's learning today?"),
		"",
		strings.Join(rows, "\n"),
	}
	if a.custom {
		sections = append(sections, "", a.input.View())
	}
	if a.errMsg != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Error).Render(a.errMsg))
	}

	card := components.ArcadeCard(strings.Join(sections, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
