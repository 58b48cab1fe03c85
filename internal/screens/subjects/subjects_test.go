package subjects

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/olive/internal/router"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/subject"
)

func newTestSession() *session.Session {
	s := session.New("kid", nil, nil)
	s.Load(context.Background())
	return s
}

func TestPickSubjectPops(t *testing.T) {
	sess := newTestSession()
	s := New(sess, nil)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("picking without a callback should go back")
	}
	if got, want := sess.Subjects.Active().ID, sess.Subjects.All()[1].ID; got != want {
		t.Errorf("expected %q active, got %q", want, got)
	}
}

func TestPickCallback(t *testing.T) {
	sess := newTestSession()
	var picked subject.Subject
	s := New(sess, func(subj subject.Subject) tea.Cmd {
		picked = subj
		return nil
	})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if picked.ID != sess.Subjects.All()[2].ID {
		t.Errorf("callback got %q", picked.Name)
	}
}

func TestAddSubject(t *testing.T) {
	sess := newTestSession()
	before := sess.Subjects.Len()
	s := New(sess, nil)

	s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if !s.adding {
		t.Fatal("N should open the new subject field")
	}
	s.input.Model.SetValue("Dinosaurs")
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if s.adding {
		t.Error("field should close after adding")
	}
	if sess.Subjects.Len() != before+1 {
		t.Fatalf("expected %d subjects, got %d", before+1, sess.Subjects.Len())
	}
	if sess.Subjects.Active().Name != "Dinosaurs" {
		t.Errorf("new subject should be active, got %q", sess.Subjects.Active().Name)
	}
}

func TestAddEmptySubject(t *testing.T) {
	sess := newTestSession()
	s := New(sess, nil)

	s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if !s.adding || s.errMsg == "" {
		t.Error("an empty name should be rejected in place")
	}
}
