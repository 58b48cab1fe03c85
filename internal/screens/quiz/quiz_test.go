package quiz

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/olive/internal/llm"
	quizgen "github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/session"
)

const planetsJSON = `{
	"question": "Which planet is known as the Red Planet?",
	"choices": [
		{"letter": "A", "text": "Venus"},
		{"letter": "B", "text": "Mars"},
		{"letter": "C", "text": "Jupiter"}
	],
	"correct": "B",
	"explanation": "Mars looks red because of rusty dust."
}`

func newTestScreen(t *testing.T, responses ...llm.MockResponse) (*QuizScreen, *session.Session) {
	t.Helper()
	sess := session.New("kid", nil, nil)
	sess.Load(context.Background())
	gen := quizgen.NewGenerator(llm.NewMockProvider(responses...), quizgen.DefaultConfig())
	return New(sess, gen), sess
}

// loadQuestion runs the generation command and feeds its result back.
func loadQuestion(t *testing.T, q *QuizScreen) {
	t.Helper()
	q.requestQuestion()
	q.Update(q.generate()())
	if q.loading {
		t.Fatal("question should have loaded")
	}
}

func TestCorrectAnswer(t *testing.T) {
	q, sess := newTestScreen(t, llm.MockResponse{Content: json.RawMessage(planetsJSON)})
	loadQuestion(t, q)

	if q.topic != session.GeneralQuizTopic {
		t.Errorf("expected topic %q, got %q", session.GeneralQuizTopic, q.topic)
	}
	if sess.Quiz() == nil {
		t.Error("question should be stored on the session")
	}
	if got := sess.Reminders.All(); len(got) != 1 || got[0].Type != reminder.TypeQuiz {
		t.Errorf("expected one quiz reminder, got %+v", got)
	}

	q.Update(tea.KeyPressMsg{Code: 'b', Text: "b"})

	if !q.answered || !q.correct {
		t.Fatal("B should be graded correct")
	}
	view := q.View(100, 30)
	if !strings.Contains(view, "Correct") {
		t.Error("verdict should be shown")
	}
	if !strings.Contains(view, "rusty dust") {
		t.Error("explanation should be shown")
	}
}

func TestWrongAnswerRevealsKey(t *testing.T) {
	q, _ := newTestScreen(t, llm.MockResponse{Content: json.RawMessage(planetsJSON)})
	loadQuestion(t, q)

	q.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if !q.answered || q.correct {
		t.Fatal("A should be graded wrong")
	}
	if q.choice.CorrectIndex != 1 {
		t.Errorf("expected B revealed, got index %d", q.choice.CorrectIndex)
	}
	if !strings.Contains(q.View(100, 30), "B) Mars") {
		t.Error("correct answer should be named")
	}
}

func TestFallbackQuestion(t *testing.T) {
	q, _ := newTestScreen(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	loadQuestion(t, q)

	if !q.question.IsFallback() {
		t.Fatal("expected fallback question")
	}
	if !strings.Contains(q.View(100, 30), quizgen.FallbackText) {
		t.Error("fallback text should be shown")
	}

	q.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if q.answered {
		t.Error("fallback question cannot be answered")
	}

	_, cmd := q.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if cmd == nil || !q.loading {
		t.Error("N should request a new question")
	}
}

func TestNextQuestionAfterAnswer(t *testing.T) {
	q, sess := newTestScreen(t,
		llm.MockResponse{Content: json.RawMessage(planetsJSON)},
		llm.MockResponse{Content: json.RawMessage(planetsJSON)},
	)
	loadQuestion(t, q)
	q.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})

	_, cmd := q.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if cmd == nil {
		t.Fatal("expected a new question request")
	}
	q.Update(q.generate()())

	if q.answered {
		t.Error("new question should be unanswered")
	}
	if sess.Reminders.Len() != 2 {
		t.Errorf("each request adds a reminder, got %d", sess.Reminders.Len())
	}
}
