package reminders

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/session"
)

func TestAddReminders(t *testing.T) {
	sess := session.New("kid", nil, nil)
	sess.Load(context.Background())
	r := New(sess)

	if !strings.Contains(r.View(100, 30), "No reminders yet") {
		t.Error("empty list should say so")
	}

	r.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	r.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})

	all := sess.Reminders.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(all))
	}
	if all[0].Type != reminder.TypeQuiz || all[1].Type != reminder.TypeRevision {
		t.Errorf("unexpected types %q, %q", all[0].Type, all[1].Type)
	}

	view := r.View(100, 30)
	if !strings.Contains(view, "Quiz time for General Knowledge!") {
		t.Error("quiz reminder should be listed")
	}
	if !strings.Contains(view, "Revise General Knowledge") {
		t.Error("revision reminder should be listed")
	}
}
