// Package quiz is the multiple-choice quiz screen.
package quiz

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	quizgen "github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/ui/components"
	"github.com/abhisek/olive/internal/ui/layout"
	"github.com/abhisek/olive/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// questionReadyMsg is sent when generation finished, successfully or not.
type questionReadyMsg struct {
	topic    string
	question *quizgen.Question
	err      error
}

type spinnerTickMsg time.Time

// QuizScreen asks one generated question at a time about the active
// subject.
type QuizScreen struct {
	sess      *session.Session
	generator *quizgen.Generator

	topic    string
	question *quizgen.Question
	choice   components.MultiChoice
	loading  bool
	spinner  int

	answered bool
	correct  bool
	errMsg   string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen.
func New(sess *session.Session, generator *quizgen.Generator) *QuizScreen {
	return &QuizScreen{sess: sess, generator: generator}
}

func (q *QuizScreen) Init() tea.Cmd {
	return q.requestQuestion()
}

func (q *QuizScreen) Title() string {
	if q.topic == "" {
		return "Quiz"
	}
	return "Quiz · " + q.topic
}

func (q *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case q.loading:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case q.answered, q.question != nil && q.question.IsFallback():
		return []layout.KeyHint{
			{Key: "N", Description: "New question"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "A/B/C", Description: "Answer"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Back"},
	}
}

func (q *QuizScreen) requestQuestion() tea.Cmd {
	q.loading = true
	q.answered = false
	q.errMsg = ""
	return tea.Batch(q.generate(), spin())
}

// generate records the quiz request and asks for a question.
func (q *QuizScreen) generate() tea.Cmd {
	sess, gen := q.sess, q.generator
	return func() tea.Msg {
		ctx := context.Background()
		topic := sess.RequestQuiz(ctx)
		question, err := gen.Generate(ctx, topic)
		return questionReadyMsg{topic: topic, question: question, err: err}
	}
}

func spin() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (q *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		if !q.loading {
			return q, nil
		}
		q.spinner++
		return q, spin()

	case questionReadyMsg:
		q.loading = false
		q.topic = msg.topic
		if msg.question == nil {
			msg.question = quizgen.Fallback(msg.topic)
		}
		q.question = msg.question
		q.sess.SetQuiz(msg.question)
		if msg.err != nil && !msg.question.IsFallback() {
			q.errMsg = msg.err.Error()
		}
		q.choice = newChoice(msg.question)
		return q, nil

	case tea.KeyMsg:
		return q.handleKey(msg)
	}
	return q, nil
}

func newChoice(question *quizgen.Question) components.MultiChoice {
	labels := make([]string, len(question.Choices))
	options := make([]string, len(question.Choices))
	for i, c := range question.Choices {
		labels[i] = c.Letter
		options[i] = c.Text
	}
	return components.NewMultiChoice(question.Text, labels, options)
}

func (q *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if q.loading || q.question == nil {
		return q, nil
	}
	if q.answered || q.question.IsFallback() {
		if strings.EqualFold(msg.String(), "n") {
			return q, q.requestQuestion()
		}
		return q, nil
	}

	var cmd tea.Cmd
	q.choice, cmd = q.choice.Update(msg)
	if letter, ok := q.choice.Chosen(); ok {
		q.grade(letter)
	}
	return q, cmd
}

func (q *QuizScreen) grade(letter string) {
	correct, err := q.question.Grade(letter)
	switch {
	case errors.Is(err, quizgen.ErrNoAnswerKey):
		q.errMsg = "This question has no answer key. Press N for a new one."
	case err != nil:
		q.errMsg = err.Error()
	}
	q.answered = true
	q.correct = correct
	q.choice.Reveal(q.question.Correct)
}

func (q *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	if q.loading {
		frame := spinnerFrames[q.spinner%len(spinnerFrames)]
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Primary).Render(frame)+" "+
				theme.Hint.Render("Olive is thinking of a question..."))
	}
	if q.question == nil {
		return ""
	}

	var sections []string
	if q.question.IsFallback() {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.Accent).Render(q.question.Text),
			theme.Hint.Render("Press N to try again."))
	} else {
		sections = append(sections, q.choice.View())
		if q.answered {
			sections = append(sections, q.renderVerdict())
		}
	}
	if q.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(q.errMsg))
	}

	card := components.ArcadeCard(strings.Join(sections, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (q *QuizScreen) renderVerdict() string {
	var verdict string
	if q.correct {
		verdict = theme.Correct.Render("🎉 Correct! Great job!")
	} else {
		answer := q.question.Correct
		if c, ok := q.question.CorrectChoice(); ok {
			answer = c.Letter + ") " + c.Text
		}
		verdict = theme.Incorrect.Render("Not quite. The answer is " + answer + ".")
	}
	if q.question.Explanation != "" {
		verdict += "\n\n" + theme.Body.Render(q.question.Explanation)
	}
	return verdict + "\n\n" + components.KeyButton("n", "Next question", true)
}
