package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/olive/internal/llm"
)

const systemPrompt = `You are a quiz master for kids. Generate a single, simple quiz question ` +
	`about the topic you are given, with exactly 3 multiple-choice options lettered A, B and C, ` +
	`and indicate the correct answer. Use words a young child understands. ` +
	`Add one friendly sentence explaining the answer.`

// Config controls quiz generation.
type Config struct {
	// Model overrides the provider's default model. Empty keeps the default.
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the settings used by the app.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   300,
		Temperature: 0.7,
	}
}

// Generator asks the LLM for one question per call. Calls are never retried.
type Generator struct {
	provider llm.Provider
	config   Config
}

// NewGenerator creates a Generator.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// Generate produces a question about topic. On any failure it returns the
// fallback question together with the error, so callers can always render
// something.
func (g *Generator) Generate(ctx context.Context, topic string) (*Question, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Fallback(topic), fmt.Errorf("%w: empty topic", ErrMalformedQuestion)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)
	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf("Generate a quiz question about %s.", topic)},
		},
		Schema:      QuestionSchema,
		Model:       g.config.Model,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	var q *Question
	resp, err := g.provider.Generate(ctx, req)
	if err == nil {
		q, err = decode(resp.Content)
	} else {
		q, err = parseRejected(err)
	}
	if err != nil {
		return Fallback(topic), err
	}
	q.Topic = topic
	return q, nil
}

func decode(content json.RawMessage) (*Question, error) {
	var q Question
	if err := json.Unmarshal(content, &q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// parseRejected recovers a question from a reply that failed schema
// validation because the model answered in the plain text layout.
// Any other failure is returned as is.
func parseRejected(err error) (*Question, error) {
	genErr := fmt.Errorf("quiz generation failed: %w", err)
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) || len(invalid.Content) == 0 {
		return nil, genErr
	}
	q, perr := Parse(string(invalid.Content))
	if perr != nil {
		return nil, genErr
	}
	return q, nil
}
