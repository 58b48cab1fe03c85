package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	answerKeyRe = regexp.MustCompile(`(?i)\bcorrect\s*(?:answer)?\s*:\s*\(?([a-z])\b`)
	questionRe  = regexp.MustCompile(`(?is)question\s*:\s*(.*?)(?:\s+\(?[a-c]\)\s|\s*\bcorrect\s*(?:answer)?\s*:|$)`)
	choiceRe    = regexp.MustCompile(`(?is)\b([a-c])\)\s*(.*?)\s*(?:\b[a-c]\)|\bcorrect\s*(?:answer)?\s*:|$)`)
)

// Parse reads a question in the plain text layout
// "Question: ... A) ... B) ... C) ... Correct: B". Choices may share a line
// or sit on their own lines.
func Parse(raw string) (*Question, error) {
	key, err := answerKey(raw)
	if err != nil {
		return nil, err
	}

	loc := questionRe.FindStringSubmatchIndex(raw)
	if loc == nil {
		return nil, fmt.Errorf("%w: missing %q marker", ErrMalformedQuestion, "Question:")
	}
	q := &Question{
		Text:    strings.TrimSpace(raw[loc[2]:loc[3]]),
		Choices: findChoices(raw[loc[3]:]),
		Correct: key,
	}

	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Grade checks answer against the answer key embedded in raw text.
// A missing key yields false with ErrNoAnswerKey.
func Grade(raw, answer string) (bool, error) {
	key, err := answerKey(raw)
	if err != nil {
		return false, err
	}
	letter, err := normalizeLetter(answer)
	if err != nil {
		return false, err
	}
	return letter == key, nil
}

func answerKey(raw string) (string, error) {
	m := answerKeyRe.FindStringSubmatch(raw)
	if m == nil {
		return "", ErrNoAnswerKey
	}
	return strings.ToUpper(m[1]), nil
}

// findChoices scans "A) text" segments left to right. Go regexps cannot
// overlap matches, so each search restarts at the next letter marker.
func findChoices(s string) []Choice {
	var out []Choice
	for {
		loc := choiceRe.FindStringSubmatchIndex(s)
		if loc == nil {
			return out
		}
		letter := strings.ToUpper(s[loc[2]:loc[3]])
		text := strings.TrimSpace(s[loc[4]:loc[5]])
		out = append(out, Choice{Letter: letter, Text: text})
		s = s[loc[5]:]
	}
}
