// Package reminder holds the learner's quiz and revision reminders.
package reminder

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type is the kind of reminder.
type Type string

const (
	TypeQuiz     Type = "Quiz"
	TypeRevision Type = "Revision"
)

// Reminder is a note the learner asked to be reminded of.
// Completed is stored and shown but nothing sets it yet.
type Reminder struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Type      Type       `json:"type"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Completed bool       `json:"completed"`
}

// ForQuiz builds the reminder created when a quiz is requested for topic.
func ForQuiz(topic string, now time.Time) Reminder {
	return newReminder(fmt.Sprintf("Quiz time for %s!", topic), TypeQuiz, now)
}

// ForRevision builds the reminder created when a revision is requested.
func ForRevision(topic string, now time.Time) Reminder {
	return newReminder(fmt.Sprintf("Revise %s", topic), TypeRevision, now)
}

func newReminder(text string, typ Type, now time.Time) Reminder {
	return Reminder{
		ID:        uuid.NewString(),
		Text:      text,
		Type:      typ,
		CreatedAt: now.UTC(),
	}
}

// List is an append-only reminder collection.
type List struct {
	mu    sync.RWMutex
	items []Reminder
}

// NewList creates an empty List.
func NewList() *List { return &List{} }

// Add appends r.
func (l *List) Add(r Reminder) {
	l.mu.Lock()
	l.items = append(l.items, r)
	l.mu.Unlock()
}

// Restore replaces the contents with reminders loaded from storage.
func (l *List) Restore(items []Reminder) {
	cp := make([]Reminder, len(items))
	copy(cp, items)
	l.mu.Lock()
	l.items = cp
	l.mu.Unlock()
}

// All returns a copy in creation order.
func (l *List) All() []Reminder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Reminder, len(l.items))
	copy(out, l.items)
	return out
}

// Pending returns the reminders that are not completed.
func (l *List) Pending() []Reminder {
	var out []Reminder
	for _, r := range l.All() {
		if !r.Completed {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of reminders.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
