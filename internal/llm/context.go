package llm

import "context"

// Purposes label LLM request events so usage can be split by feature.
const (
	PurposeChat  = "chat"
	PurposeStudy = "study"
	PurposeQuiz  = "quiz"

	// PurposeUnknown is recorded for calls made without a purpose.
	PurposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose returns a context whose LLM calls are recorded under purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
