package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/olive/internal/llm"
	"github.com/abhisek/olive/internal/progress"
	"github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/transcript"
	"github.com/abhisek/olive/internal/tutor"
)

type testEnv struct {
	srv  *httptest.Server
	hub  *Hub
	mock *llm.MockProvider
}

func newTestEnv(t *testing.T, responses ...llm.MockResponse) *testEnv {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	hub := NewHub(func(userID string) *session.Session {
		return session.New(userID, nil, nil)
	})
	s := New(Options{
		Hub:         hub,
		Tutor:       tutor.New(mock, tutor.DefaultConfig(), nil),
		Quiz:        quiz.NewGenerator(mock, quiz.DefaultConfig()),
		DefaultUser: "local",
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, hub: hub, mock: mock}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp, err := http.Get(e.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, e.hub.Len(), "health checks never open sessions")
}

func TestProfileAndAvatar(t *testing.T) {
	e := newTestEnv(t)

	var p profileResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/profile", nil, &p))
	assert.Equal(t, "local", p.UserID)
	assert.Equal(t, session.DefaultAvatar, p.Avatar)
	assert.Equal(t, progress.GameUnlockThreshold, p.LessonsToUnlock)

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/profile/avatar", map[string]string{"avatar": "🦄"}, &p))
	assert.Equal(t, "🦄", p.Avatar)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/api/profile/avatar", map[string]string{"avatar": "toolong"}, nil))
}

func TestUserHeaderSelectsLearner(t *testing.T) {
	e := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/profile", nil)
	require.NoError(t, err)
	req.Header.Set(UserHeader, "maya")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var p profileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "maya", p.UserID)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/profile?user=bad%20id", nil, nil))
}

func TestSubjects(t *testing.T) {
	e := newTestEnv(t)

	var list subjectsResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/subjects", nil, &list))
	require.Len(t, list.Subjects, 5)
	assert.Equal(t, subject.GeneralID, list.Active)

	var created subject.Subject
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/subjects", map[string]string{"name": "Dinosaurs", "icon": "🦕"}, &created))
	assert.Equal(t, "Dinosaurs", created.Name)

	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/subjects", nil, &list))
	assert.Len(t, list.Subjects, 6)
	assert.Equal(t, created.ID, list.Active)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/subjects", map[string]string{"name": " "}, nil))
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/subjects", nil, &list))
	assert.Len(t, list.Subjects, 6, "a blank name is rejected before the registry")

	var space subject.Subject
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/subjects", map[string]string{"name": " Space "}, &space))
	assert.Equal(t, "Space", space.Name)
	assert.Equal(t, subject.DefaultIcon, space.Icon)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPut, "/api/subjects/active", map[string]string{"id": "nope"}, nil))
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/subjects/active", map[string]string{"id": subject.GeneralID}, nil))
}

func TestChatEndpoint(t *testing.T) {
	e := newTestEnv(t, llm.MockResponse{Chunks: []string{"Hi ", "there!"}})

	var out chatResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/chat", chatRequest{Text: "hello"}, &out))
	assert.Equal(t, "Hi there!", out.Reply.Content)
	assert.Equal(t, 1, out.LessonsCompleted)
	assert.Empty(t, out.Error)

	var tr transcriptResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/transcripts/chat/general", nil, &tr))
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, transcript.RoleUser, tr.Messages[0].Role)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/chat", chatRequest{Text: "  "}, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/chat", chatRequest{Mode: "games", Text: "hi"}, nil))
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/chat", chatRequest{Mode: session.ModeStudy, Text: "hi"}, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/transcripts/other/general", nil, nil))
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/transcripts/chat/nope", nil, nil))
}

func TestChatEndpointTransportError(t *testing.T) {
	e := newTestEnv(t, llm.MockResponse{Chunks: []string{"Half"}, Err: &llm.ErrProviderUnavailable{}})

	var out chatResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/chat", chatRequest{Text: "hello"}, &out))
	assert.Equal(t, "Half", out.Reply.Content)
	assert.NotEmpty(t, out.Error)
	assert.Zero(t, out.LessonsCompleted)
}

func TestStudyFlow(t *testing.T) {
	e := newTestEnv(t, llm.MockResponse{Chunks: []string{"Roots drink water."}})

	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/study", nil, nil))

	var list subjectsResponse
	e.do(t, http.MethodGet, "/api/subjects", nil, &list)
	science := list.Subjects[1]
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/subjects/active", map[string]string{"id": science.ID}, nil))

	var study studyResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/study", nil, &study))
	assert.Equal(t, science.ID, study.Subject.ID)
	require.Len(t, study.Messages, 1)
	assert.Equal(t, session.StudyGreeting("Science"), study.Messages[0].Content)

	var out chatResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/chat", chatRequest{Mode: session.ModeStudy, Text: "how do plants drink?"}, &out))
	assert.Equal(t, "Roots drink water.", out.Reply.Content)

	call, ok := e.mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, tutor.StudyPrompt("Science"), call.System)
}

func TestQuizFlow(t *testing.T) {
	e := newTestEnv(t, llm.MockResponse{Content: json.RawMessage(`{
		"question": "What do bees make?",
		"choices": [{"letter": "A", "text": "Honey"}, {"letter": "B", "text": "Milk"}, {"letter": "C", "text": "Bread"}],
		"correct": "A",
		"explanation": "Bees make honey from flower nectar."
	}`)})

	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/quiz/answer", answerRequest{Answer: "A"}, nil))

	var q quizResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/quiz", nil, &q))
	assert.Equal(t, session.GeneralQuizTopic, q.Topic)
	assert.Equal(t, "What do bees make?", q.Question)
	assert.False(t, q.Fallback)
	require.Len(t, q.Choices, 3)

	var ans answerResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/quiz/answer", answerRequest{Answer: "b"}, &ans))
	assert.False(t, ans.Correct)
	assert.Equal(t, "A", ans.Answer)

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/quiz/answer", answerRequest{Answer: " a "}, &ans))
	assert.True(t, ans.Correct)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/quiz/answer", answerRequest{Answer: "z"}, nil))

	var rems []reminder.Reminder
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/reminders", nil, &rems))
	require.Len(t, rems, 1)
	assert.Equal(t, "Quiz time for General Knowledge!", rems[0].Text)
}

func TestQuizFallback(t *testing.T) {
	e := newTestEnv(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})

	var q quizResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/quiz", nil, &q))
	assert.True(t, q.Fallback)
	assert.Equal(t, quiz.FallbackText, q.Question)

	assert.Equal(t, http.StatusUnprocessableEntity, e.do(t, http.MethodPost, "/api/quiz/answer", answerRequest{Answer: "A"}, nil))
}

func TestReminderEndpoint(t *testing.T) {
	e := newTestEnv(t)

	var rem reminder.Reminder
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/reminders", reminderRequest{Type: reminder.TypeRevision}, &rem))
	assert.Equal(t, "Revise General Knowledge", rem.Text)
	assert.False(t, rem.Completed)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/reminders", reminderRequest{Type: "Homework"}, nil))
}

func TestGamesAndReset(t *testing.T) {
	e := newTestEnv(t)
	e.mock.Fallback = func(llm.Request) llm.MockResponse { return llm.MockResponse{Chunks: []string{"ok"}} }

	var corner progress.Corner
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/games", nil, &corner))
	assert.False(t, corner.Unlocked)
	assert.Equal(t, "Complete 3 more lessons to unlock games!", corner.Message)

	for i := 0; i < progress.GameUnlockThreshold; i++ {
		require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/chat", chatRequest{Text: "hi"}, nil))
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/games", nil, &corner))
	assert.True(t, corner.Unlocked)
	assert.Len(t, corner.Games, 2)

	var p profileResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/reset", nil, &p))
	assert.Zero(t, p.LessonsCompleted)
	assert.False(t, p.GamesUnlocked)
}

func dialChat(t *testing.T, e *testEnv) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readFrames(t *testing.T, conn *websocket.Conn) []Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var frames []Frame
	for {
		var f Frame
		require.NoError(t, wsjson.Read(ctx, conn, &f))
		frames = append(frames, f)
		if f.Type == FrameDone || f.Type == FrameError {
			return frames
		}
	}
}

func TestChatSocketStreams(t *testing.T) {
	e := newTestEnv(t, llm.MockResponse{Chunks: []string{"Hel", "lo, ", "world"}})
	conn := dialChat(t, e)

	ctx := context.Background()
	require.NoError(t, wsjson.Write(ctx, conn, chatRequest{Mode: session.ModeChat, Text: "hi"}))

	frames := readFrames(t, conn)
	require.Len(t, frames, 5)
	assert.Equal(t, FrameSubmitted, frames[0].Type)
	assert.Equal(t, Frame{Type: FrameDelta, Delta: "Hel", Partial: "Hel"}, frames[1])
	assert.Equal(t, "Hello, ", frames[2].Partial)
	assert.Equal(t, "Hello, world", frames[3].Partial)
	assert.Equal(t, FrameDone, frames[4].Type)
	assert.Equal(t, "Hello, world", frames[4].Reply)
	assert.Equal(t, 1, frames[4].LessonsCompleted)

	// Rejected turns answer with an error frame and keep the socket open.
	require.NoError(t, wsjson.Write(ctx, conn, chatRequest{Text: "   "}))
	frames = readFrames(t, conn)
	require.Len(t, frames, 1)
	assert.Equal(t, FrameError, frames[0].Type)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestChatSocketPartialOnFailure(t *testing.T) {
	e := newTestEnv(t, llm.MockResponse{Chunks: []string{"Plants ", "need"}, Err: &llm.ErrRateLimit{}})
	conn := dialChat(t, e)

	require.NoError(t, wsjson.Write(context.Background(), conn, chatRequest{Text: "what do plants need?"}))
	frames := readFrames(t, conn)

	done := frames[len(frames)-1]
	assert.Equal(t, FrameDone, done.Type)
	assert.Equal(t, "Plants need", done.Reply)
	assert.NotEmpty(t, done.Error)
	assert.Zero(t, done.LessonsCompleted)
}
