package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendKeepsOrder(t *testing.T) {
	s := NewStore()
	key := ChatKey("general")

	s.Append(key, RoleUser, "hi")
	s.Append(key, RoleAssistant, "hello!")
	s.Append(key, RoleUser, "what is rain?")

	got := s.Get(key)
	require.Len(t, got, 3)
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, RoleAssistant, got[1].Role)
	assert.Equal(t, "what is rain?", got[2].Content)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()
	key := ChatKey("general")
	s.Append(key, RoleUser, "hi")

	got := s.Get(key)
	got[0].Content = "mutated"
	got = append(got, Message{Role: RoleUser, Content: "extra"})

	fresh := s.Get(key)
	require.Len(t, fresh, 1)
	assert.Equal(t, "hi", fresh[0].Content)
}

func TestGetMissingIsEmpty(t *testing.T) {
	s := NewStore()
	got := s.Get(StudyKey("nope"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSpacesAreIndependent(t *testing.T) {
	s := NewStore()
	s.Append(ChatKey("sci"), RoleUser, "chat")
	s.Append(StudyKey("sci"), RoleUser, "study")

	assert.Equal(t, 1, s.Len(ChatKey("sci")))
	assert.Equal(t, 1, s.Len(StudyKey("sci")))
	assert.Equal(t, "study", s.Get(StudyKey("sci"))[0].Content)
}

func TestLoadReplaces(t *testing.T) {
	s := NewStore()
	key := StudyKey("maths")
	s.Append(key, RoleUser, "old")
	s.Load(key, []Message{{Role: RoleAssistant, Content: "hello"}})
	require.Equal(t, 1, s.Len(key))
	assert.Equal(t, "hello", s.Get(key)[0].Content)

	s.Load(key, nil)
	assert.Equal(t, 0, s.Len(key))
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Append(ChatKey("a"), RoleUser, "x")
	s.Append(StudyKey("b"), RoleUser, "y")
	s.Clear()
	assert.Zero(t, s.Len(ChatKey("a")))
	assert.Zero(t, s.Len(StudyKey("b")))
}

func TestWindow(t *testing.T) {
	msgs := []Message{{Content: "1"}, {Content: "2"}, {Content: "3"}, {Content: "4"}}

	tests := []struct {
		name string
		max  int
		want []string
	}{
		{"disabled", 0, []string{"1", "2", "3", "4"}},
		{"larger than history", 10, []string{"1", "2", "3", "4"}},
		{"truncates oldest", 2, []string{"3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(msgs, tt.max)
			var contents []string
			for _, m := range got {
				contents = append(contents, m.Content)
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}
