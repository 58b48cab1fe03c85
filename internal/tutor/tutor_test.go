package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/olive/internal/llm"
	"github.com/abhisek/olive/internal/progress"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/transcript"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New("kid", nil, nil)
	s.Load(context.Background())
	return s
}

func selectScience(t *testing.T, s *session.Session) subject.Subject {
	t.Helper()
	sci := s.Subjects.All()[1]
	_, err := s.SelectSubject(context.Background(), sci.ID)
	require.NoError(t, err)
	return sci
}

type recorder struct {
	events []Event
}

func (r *recorder) on(e Event) { r.events = append(r.events, e) }

func (r *recorder) phases() []Phase {
	out := make([]Phase, len(r.events))
	for i, e := range r.events {
		out[i] = e.Phase
	}
	return out
}

func TestChatStreamsAndCommits(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"Hel", "lo, ", "world"}})
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)
	rec := &recorder{}

	res, err := h.Chat(context.Background(), s, "  hi olive  ", rec.on)
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Equal(t, "Hello, world", res.Reply.Content)
	assert.Equal(t, "hi olive", res.User.Content)
	assert.Equal(t, transcript.ChatKey(subject.GeneralID), res.Key)
	assert.Equal(t, 1, s.Progress.Value())

	assert.Equal(t, []Phase{Submitted, Streaming, Streaming, Streaming, Complete}, rec.phases())
	assert.Equal(t, "Hel", rec.events[1].Partial)
	assert.Equal(t, "Hello, ", rec.events[2].Partial)
	assert.Equal(t, "world", rec.events[3].Delta)
	assert.Equal(t, "Hello, world", rec.events[4].Partial)

	msgs := s.Transcripts.Get(res.Key)
	require.Len(t, msgs, 2)
	assert.Equal(t, transcript.RoleUser, msgs[0].Role)
	assert.Equal(t, transcript.RoleAssistant, msgs[1].Role)
}

func TestChatSendsWholeTranscript(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Chunks: []string{"one"}},
		llm.MockResponse{Chunks: []string{"two"}},
	)
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)
	ctx := context.Background()

	_, err := h.Chat(ctx, s, "first", nil)
	require.NoError(t, err)
	_, err = h.Chat(ctx, s, "second", nil)
	require.NoError(t, err)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Empty(t, call.System, "general chat has no system prompt")
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "one"},
		{Role: llm.RoleUser, Content: "second"},
	}, call.Messages)
}

func TestChatHistoryWindow(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.Fallback = func(llm.Request) llm.MockResponse { return llm.MockResponse{Chunks: []string{"ok"}} }
	cfg := DefaultConfig()
	cfg.HistoryWindow = 3
	h := New(mock, cfg, nil)
	s := newSession(t)

	for _, text := range []string{"a", "b", "c"} {
		_, err := h.Chat(context.Background(), s, text, nil)
		require.NoError(t, err)
	}

	call, _ := mock.LastCall()
	// Only the newest three messages are sent.
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "b"},
		{Role: llm.RoleAssistant, Content: "ok"},
		{Role: llm.RoleUser, Content: "c"},
	}, call.Messages)
	assert.Len(t, s.Transcripts.Get(transcript.ChatKey(subject.GeneralID)), 6, "stored history is never truncated")
}

func TestChatRejectsEmptyUtterance(t *testing.T) {
	mock := llm.NewMockProvider()
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)
	rec := &recorder{}

	_, err := h.Chat(context.Background(), s, " \n\t", rec.on)
	assert.ErrorIs(t, err, ErrEmptyUtterance)
	assert.Empty(t, rec.events)
	assert.Zero(t, mock.CallCount())
	assert.Zero(t, s.Transcripts.Len(transcript.ChatKey(subject.GeneralID)))
}

func TestChatTransportErrorKeepsPartial(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Chunks: []string{"Plants need ", "sun"},
		Err:    &llm.ErrProviderUnavailable{Err: errors.New("connection reset")},
	})
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)
	rec := &recorder{}

	res, err := h.Chat(context.Background(), s, "what do plants need?", rec.on)
	require.NoError(t, err, "transport failures end the turn without an error")
	require.True(t, res.Failed())

	assert.Equal(t, "Plants need sun", res.Reply.Content)
	assert.Equal(t, "Plants need sun", res.Err.Partial)
	var unavailable *llm.ErrProviderUnavailable
	assert.ErrorAs(t, res.Err, &unavailable)
	assert.NotEmpty(t, res.Err.UserMessage())

	assert.Zero(t, s.Progress.Value(), "failed turns do not count")
	msgs := s.Transcripts.Get(res.Key)
	require.Len(t, msgs, 2, "the user message is kept")
	assert.Equal(t, "Plants need sun", msgs[1].Content)
	assert.Equal(t, Complete, rec.events[len(rec.events)-1].Phase)
}

func TestChatTransportErrorBeforeFirstFragment(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrAuth{Err: errors.New("bad key")}})
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)

	res, err := h.Chat(context.Background(), s, "hello", nil)
	require.NoError(t, err)
	require.True(t, res.Failed())
	assert.Equal(t, "", res.Reply.Content)
	assert.Contains(t, res.Err.UserMessage(), "API key")
}

func TestChatSkipsEmptyReplyInLaterPrompts(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrAuth{Err: errors.New("bad key")}},
		llm.MockResponse{Chunks: []string{"hi there"}},
	)
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)
	ctx := context.Background()

	res, err := h.Chat(ctx, s, "hello", nil)
	require.NoError(t, err)
	require.True(t, res.Failed())

	_, err = h.Chat(ctx, s, "are you there?", nil)
	require.NoError(t, err)

	call, _ := mock.LastCall()
	for _, m := range call.Messages {
		assert.NotEmpty(t, m.Content, "empty %s message sent", m.Role)
	}
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleUser, Content: "are you there?"},
	}, call.Messages)
	assert.Len(t, s.Transcripts.Get(res.Key), 4, "the empty reply stays in stored history")
}

func TestChatUnlocksGameCorner(t *testing.T) {
	mock := llm.NewOfflineProvider()
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)

	var last Result
	for i := 0; i < progress.GameUnlockThreshold; i++ {
		assert.False(t, s.Progress.IsUnlocked())
		res, err := h.Chat(context.Background(), s, "tell me something", nil)
		require.NoError(t, err)
		last = res
	}
	assert.True(t, s.Progress.IsUnlocked())
	assert.True(t, last.Step.JustUnlocked())
}

func TestChatBusySession(t *testing.T) {
	h := New(llm.NewOfflineProvider(), DefaultConfig(), nil)
	s := newSession(t)

	release, err := s.BeginTurn()
	require.NoError(t, err)
	defer release()

	_, err = h.Chat(context.Background(), s, "hi", nil)
	assert.ErrorIs(t, err, session.ErrTurnInProgress)
}

func TestStudyUsesTutorPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"Plants make food from sunlight."}})
	h := New(mock, DefaultConfig(), nil)
	s := newSession(t)
	ctx := context.Background()
	sci := selectScience(t, s)

	_, greeting, err := s.OpenStudy(ctx)
	require.NoError(t, err)
	require.Len(t, greeting, 1)

	res, err := h.Study(ctx, s, "how do plants eat?", nil)
	require.NoError(t, err)
	assert.Equal(t, transcript.StudyKey(sci.ID), res.Key)

	call, _ := mock.LastCall()
	assert.Equal(t, StudyPrompt("Science"), call.System)
	assert.Contains(t, call.System, "tutor for kids learning about Science")
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "how do plants eat?"}}, call.Messages,
		"the greeting is not sent ahead of the first question")

	assert.Len(t, s.Transcripts.Get(res.Key), 3)
	assert.Empty(t, s.Transcripts.Get(transcript.ChatKey(sci.ID)), "study and chat never share a transcript")
	assert.Equal(t, 1, s.Progress.Value())
}

func TestStudyNeedsSubject(t *testing.T) {
	h := New(llm.NewOfflineProvider(), DefaultConfig(), nil)
	s := newSession(t)

	_, err := h.Study(context.Background(), s, "hi", nil)
	assert.ErrorIs(t, err, session.ErrNoStudySubject)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "streaming", Streaming.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}
