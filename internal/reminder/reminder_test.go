package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	q := ForQuiz("Science", now)
	assert.Equal(t, "Quiz time for Science!", q.Text)
	assert.Equal(t, TypeQuiz, q.Type)
	assert.Equal(t, now, q.CreatedAt)
	assert.False(t, q.Completed)
	assert.Nil(t, q.DueDate)
	assert.NotEmpty(t, q.ID)

	r := ForRevision("Maths", now)
	assert.Equal(t, "Revise Maths", r.Text)
	assert.Equal(t, TypeRevision, r.Type)
	assert.NotEqual(t, q.ID, r.ID)
}

func TestListAddAndRestore(t *testing.T) {
	l := NewList()
	now := time.Now()
	l.Add(ForQuiz("A", now))
	l.Add(ForRevision("B", now))

	all := l.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Quiz time for A!", all[0].Text)

	done := ForRevision("C", now)
	done.Completed = true
	l.Restore([]Reminder{done, ForQuiz("D", now)})
	assert.Equal(t, 2, l.Len())
	require.Len(t, l.Pending(), 1)
	assert.Equal(t, "Quiz time for D!", l.Pending()[0].Text)
}
