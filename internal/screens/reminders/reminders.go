// Package reminders lists quiz and revision reminders.
package reminders

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/ui/components"
	"github.com/abhisek/olive/internal/ui/layout"
	"github.com/abhisek/olive/internal/ui/theme"
)

const maxShown = 10

// RemindersScreen shows the newest reminders and adds new ones.
type RemindersScreen struct {
	sess *session.Session
}

var _ screen.Screen = (*RemindersScreen)(nil)
var _ screen.KeyHintProvider = (*RemindersScreen)(nil)

// New creates a RemindersScreen.
func New(sess *session.Session) *RemindersScreen {
	return &RemindersScreen{sess: sess}
}

func (r *RemindersScreen) Init() tea.Cmd { return nil }

func (r *RemindersScreen) Title() string { return "Reminders" }

func (r *RemindersScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Q", Description: "Remind me to quiz"},
		{Key: "R", Description: "Remind me to revise"},
		{Key: "Esc", Description: "Back"},
	}
}

func (r *RemindersScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	ctx := context.Background()
	switch strings.ToLower(kmsg.String()) {
	case "q":
		r.sess.RemindQuiz(ctx, r.sess.QuizTopic())
	case "r":
		r.sess.RemindRevision(ctx, r.sess.QuizTopic())
	}
	return r, nil
}

func (r *RemindersScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	all := r.sess.Reminders.All()

	lines := []string{
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render("⏰ REMINDERS"),
		"",
	}
	if len(all) == 0 {
		lines = append(lines, theme.Hint.Render("No reminders yet."))
	}

	// Newest first.
	shown := 0
	for i := len(all) - 1; i >= 0 && shown < maxShown; i-- {
		lines = append(lines, renderReminder(all[i]))
		shown++
	}
	if len(all) > maxShown {
		lines = append(lines, theme.Hint.Render(fmt.Sprintf("…and %d more", len(all)-maxShown)))
	}

	card := components.ArcadeCard(strings.Join(lines, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func renderReminder(rem reminder.Reminder) string {
	icon := "📝"
	if rem.Type == reminder.TypeRevision {
		icon = "📖"
	}
	check := "○"
	if rem.Completed {
		check = "●"
	}
	when := rem.CreatedAt.Local().Format("Jan 2 15:04")
	return fmt.Sprintf("%s %s %s  %s", check, icon, theme.Body.Render(rem.Text), theme.Hint.Render(when))
}
