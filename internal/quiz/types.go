// Package quiz generates and grades short multiple-choice questions.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// FallbackText is shown when no question could be generated.
const FallbackText = "Could not generate a quiz question at this time. Please try again."

// Letters are the answer letters every question offers.
var Letters = []string{"A", "B", "C"}

var (
	// ErrNoAnswerKey means the question carries no correct answer.
	ErrNoAnswerKey = errors.New("quiz: question has no answer key")

	// ErrMalformedQuestion means the question text could not be parsed.
	ErrMalformedQuestion = errors.New("quiz: malformed question")

	// ErrInvalidAnswer means the learner's answer is not one of the choices.
	ErrInvalidAnswer = errors.New("quiz: answer is not a valid choice")
)

// Choice is one lettered option.
type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Question is a generated multiple-choice question.
type Question struct {
	Topic       string   `json:"topic,omitempty"`
	Text        string   `json:"question"`
	Choices     []Choice `json:"choices"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// Fallback returns the placeholder question used when generation fails.
// It has no answer key, so grading it always fails with ErrNoAnswerKey.
func Fallback(topic string) *Question {
	return &Question{Topic: topic, Text: FallbackText}
}

// IsFallback reports whether q is the generation-failure placeholder.
func (q *Question) IsFallback() bool {
	return q == nil || (q.Correct == "" && len(q.Choices) == 0)
}

// Grade reports whether answer picks the correct choice.
func (q *Question) Grade(answer string) (bool, error) {
	if q.IsFallback() || q.Correct == "" {
		return false, ErrNoAnswerKey
	}
	letter, err := normalizeLetter(answer)
	if err != nil {
		return false, err
	}
	if len(q.Choices) > 0 && !q.hasChoice(letter) {
		return false, fmt.Errorf("%w: %q", ErrInvalidAnswer, answer)
	}
	return letter == q.Correct, nil
}

// CorrectChoice returns the choice matching the answer key.
func (q *Question) CorrectChoice() (Choice, bool) {
	for _, c := range q.Choices {
		if c.Letter == q.Correct {
			return c, true
		}
	}
	return Choice{}, false
}

// String renders the question in the plain text layout:
//
//	Question: ...
//	A) ...
//	B) ...
//	C) ...
//
// The answer key is not included.
func (q *Question) String() string {
	if q.IsFallback() {
		return FallbackText
	}
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(q.Text)
	for _, c := range q.Choices {
		b.WriteString("\n")
		b.WriteString(c.Letter)
		b.WriteString(") ")
		b.WriteString(c.Text)
	}
	return b.String()
}

// validate normalizes letters and checks the question is gradable.
func (q *Question) validate() error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return fmt.Errorf("%w: empty question", ErrMalformedQuestion)
	}
	if len(q.Choices) < 2 {
		return fmt.Errorf("%w: need at least 2 choices, got %d", ErrMalformedQuestion, len(q.Choices))
	}
	seen := make(map[string]bool, len(q.Choices))
	for i := range q.Choices {
		letter, err := normalizeLetter(q.Choices[i].Letter)
		if err != nil {
			return fmt.Errorf("%w: choice %d has letter %q", ErrMalformedQuestion, i, q.Choices[i].Letter)
		}
		if seen[letter] {
			return fmt.Errorf("%w: duplicate choice %s", ErrMalformedQuestion, letter)
		}
		seen[letter] = true
		q.Choices[i].Letter = letter
		q.Choices[i].Text = strings.TrimSpace(q.Choices[i].Text)
	}
	if strings.TrimSpace(q.Correct) == "" {
		return ErrNoAnswerKey
	}
	correct, err := normalizeLetter(q.Correct)
	if err != nil || !seen[correct] {
		return fmt.Errorf("%w: answer key %q is not a choice", ErrMalformedQuestion, q.Correct)
	}
	q.Correct = correct
	return nil
}

func (q *Question) hasChoice(letter string) bool {
	for _, c := range q.Choices {
		if c.Letter == letter {
			return true
		}
	}
	return false
}

// normalizeLetter turns " b) " into "B".
func normalizeLetter(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ").:")
	s = strings.TrimLeft(s, "(")
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return "", fmt.Errorf("%w: %q", ErrInvalidAnswer, s)
	}
	return s, nil
}
