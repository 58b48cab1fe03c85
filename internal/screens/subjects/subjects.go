// Package subjects lists the learner's subjects and lets them add or pick
// one.
package subjects

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/router"
	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/ui/components"
	"github.com/abhisek/olive/internal/ui/layout"
	"github.com/abhisek/olive/internal/ui/theme"
)

// PickFunc is called after a subject becomes active. The returned command
// replaces the default of going back.
type PickFunc func(subject.Subject) tea.Cmd

// SubjectsScreen shows every subject with the active one marked.
type SubjectsScreen struct {
	sess     *session.Session
	onPick   PickFunc
	selected int
	adding   bool
	input    components.TextInput
	errMsg   string
}

var _ screen.Screen = (*SubjectsScreen)(nil)
var _ screen.KeyHintProvider = (*SubjectsScreen)(nil)

// New creates a SubjectsScreen. A nil onPick returns to the previous
// screen after picking.
func New(sess *session.Session, onPick PickFunc) *SubjectsScreen {
	s := &SubjectsScreen{sess: sess, onPick: onPick}
	active := sess.Subjects.Active().ID
	for i, subj := range sess.Subjects.All() {
		if subj.ID == active {
			s.selected = i
		}
	}
	return s
}

func (s *SubjectsScreen) Init() tea.Cmd { return nil }

func (s *SubjectsScreen) Title() string { return "Subjects" }

func (s *SubjectsScreen) KeyHints() []layout.KeyHint {
	if s.adding {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Add subject"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Pick"},
		{Key: "N", Description: "New subject"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SubjectsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.adding {
		return s.updateAdding(msg)
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	all := s.sess.Subjects.All()
	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(all)-1 {
			s.selected++
		}
	case "n", "N":
		s.adding = true
		s.errMsg = ""
		s.input = components.NewTextInput("Subject name, e.g. Dinosaurs", 40)
		return s, s.input.Init()
	case "enter":
		if s.selected < len(all) {
			return s, s.pick(all[s.selected].ID)
		}
	}
	return s, nil
}

func (s *SubjectsScreen) updateAdding(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		name := strings.TrimSpace(s.input.Value())
		if name == "" {
			s.errMsg = "Give your subject a name first!"
			return s, nil
		}
		subj := s.sess.AddSubject(context.Background(), name, subject.DefaultIcon)
		s.adding = false
		s.selected = s.sess.Subjects.Len() - 1
		return s, s.picked(subj)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SubjectsScreen) pick(id string) tea.Cmd {
	subj, err := s.sess.SelectSubject(context.Background(), id)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	return s.picked(subj)
}

func (s *SubjectsScreen) picked(subj subject.Subject) tea.Cmd {
	if s.onPick != nil {
		return s.onPick(subj)
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *SubjectsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	active := s.sess.Subjects.Active().ID

	var lines []string
	for i, subj := range s.sess.Subjects.All() {
		label := subj.Label()
		if subj.ID == active {
			label += "  ✓"
		}
		if i == s.selected && !s.adding {
			lines = append(lines, theme.Selected.Render("▸ "+label))
		} else {
			lines = append(lines, theme.Unselected.Render("  "+label))
		}
	}

	if s.adding {
		lines = append(lines, "", theme.Body.Render("New subject:"), s.input.View())
	}
	if s.errMsg != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	card := components.ArcadeCard(strings.Join(lines, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
