// Package tutor runs chat and study turns: it records the learner's
// utterance, streams the model's reply and commits the finished exchange.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/abhisek/olive/internal/llm"
	"github.com/abhisek/olive/internal/progress"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/transcript"
)

// ErrEmptyUtterance is returned for blank input; the turn never starts.
var ErrEmptyUtterance = errors.New("tutor: nothing to send")

// Phase is where a turn is in its life.
type Phase int

const (
	AwaitingInput Phase = iota
	Submitted
	Streaming
	Complete
)

func (p Phase) String() string {
	switch p {
	case AwaitingInput:
		return "awaiting_input"
	case Submitted:
		return "submitted"
	case Streaming:
		return "streaming"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Event reports turn progress to the rendering host. Streaming events carry
// the new fragment in Delta and everything received so far in Partial.
type Event struct {
	Phase   Phase
	Delta   string
	Partial string
}

// EventFunc receives turn events on the caller's goroutine.
type EventFunc func(Event)

// TransportError wraps a provider failure that ended a turn early.
type TransportError struct {
	Err     error
	Partial string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reply interrupted after %d bytes: %v", len(e.Partial), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage is the text shown to the learner for a failed turn.
func (e *TransportError) UserMessage() string {
	var auth *llm.ErrAuth
	var rate *llm.ErrRateLimit
	switch {
	case errors.As(e.Err, &auth):
		return "I can't reach my brain right now. Ask a grown-up to check the API key."
	case errors.As(e.Err, &rate):
		return "Whoa, lots of questions! Let's wait a moment and try again."
	default:
		return "Oops! Something went wrong while I was thinking. Please try again."
	}
}

// Result describes a finished turn.
type Result struct {
	Key   transcript.Key
	User  transcript.Message
	Reply transcript.Message
	Step  progress.Step

	// Err is set when the provider failed. Reply then holds whatever
	// arrived before the failure.
	Err *TransportError
}

// Failed reports whether the reply was cut short.
func (r Result) Failed() bool { return r.Err != nil }

// Config tunes the handler.
type Config struct {
	// Model overrides the provider's model for chat and study turns.
	Model string

	// HistoryWindow caps how many stored messages go into each prompt.
	// Zero or less sends the whole transcript.
	HistoryWindow int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the settings used by the app.
func DefaultConfig() Config {
	return Config{
		HistoryWindow: 40,
		MaxTokens:     1024,
		Temperature:   0.7,
	}
}

// Handler runs turns against an LLM provider. One Handler serves any
// number of sessions.
type Handler struct {
	provider llm.Provider
	config   Config
	logger   *log.Logger
}

// New creates a Handler. A nil logger discards output.
func New(provider llm.Provider, cfg Config, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{provider: provider, config: cfg, logger: logger}
}

// Chat runs one general-chat turn on the active subject.
// Provider failures do not produce an error; see Result.Err.
func (h *Handler) Chat(ctx context.Context, sess *session.Session, text string, onEvent EventFunc) (Result, error) {
	subj := sess.Subjects.Active()
	return h.run(ctx, sess, turnSpec{
		key:     transcript.ChatKey(subj.ID),
		purpose: llm.PurposeChat,
	}, text, onEvent)
}

// Study runs one study-mode turn on the active subject with the tutor
// system prompt.
func (h *Handler) Study(ctx context.Context, sess *session.Session, text string, onEvent EventFunc) (Result, error) {
	subj := sess.Subjects.Active()
	if subj.IsGeneral() {
		return Result{}, session.ErrNoStudySubject
	}
	return h.run(ctx, sess, turnSpec{
		key:     transcript.StudyKey(subj.ID),
		system:  StudyPrompt(subj.Name),
		purpose: llm.PurposeStudy,
	}, text, onEvent)
}

type turnSpec struct {
	key     transcript.Key
	system  string
	purpose string
}

func (h *Handler) run(ctx context.Context, sess *session.Session, spec turnSpec, text string, onEvent EventFunc) (Result, error) {
	emit := onEvent
	if emit == nil {
		emit = func(Event) {}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyUtterance
	}

	release, err := sess.BeginTurn()
	if err != nil {
		return Result{}, err
	}
	defer release()

	history := sess.Transcript(ctx, spec.key)
	user := sess.Transcripts.Append(spec.key, transcript.RoleUser, text)
	emit(Event{Phase: Submitted})

	req := llm.Request{
		System:      spec.system,
		Messages:    promptMessages(append(history, user), h.config.HistoryWindow),
		Model:       h.config.Model,
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
	}

	var buf strings.Builder
	resp, streamErr := h.provider.Stream(llm.WithPurpose(ctx, spec.purpose), req, func(delta string) error {
		buf.WriteString(delta)
		emit(Event{Phase: Streaming, Delta: delta, Partial: buf.String()})
		return nil
	})

	replyText := buf.String()
	if replyText == "" && streamErr == nil {
		replyText = resp.Text()
	}
	reply := sess.Transcripts.Append(spec.key, transcript.RoleAssistant, replyText)

	// The exchange is recorded even if the caller went away mid-stream.
	step := sess.CommitTurn(context.WithoutCancel(ctx), session.Turn{
		Key:       spec.key,
		User:      user,
		Assistant: reply,
		Lesson:    streamErr == nil,
	})

	result := Result{Key: spec.key, User: user, Reply: reply, Step: step}
	if streamErr != nil {
		result.Err = &TransportError{Err: streamErr, Partial: replyText}
		h.logger.Warn("turn ended early",
			"user", sess.UserID,
			"key", spec.key.String(),
			"partial_bytes", len(replyText),
			"err", streamErr,
		)
	} else if step.JustUnlocked() {
		h.logger.Info("game corner unlocked", "user", sess.UserID, "lessons", step.After)
	}

	emit(Event{Phase: Complete, Partial: replyText})
	return result, nil
}

// promptMessages converts the newest window of a transcript into provider
// messages. System messages are carried by Request.System instead. The
// prompt always opens with a learner message, and empty assistant replies
// left by failed turns are skipped; some providers reject either.
func promptMessages(msgs []transcript.Message, window int) []llm.Message {
	msgs = transcript.Window(msgs, window)
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case transcript.RoleUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case transcript.RoleAssistant:
			if len(out) == 0 || strings.TrimSpace(m.Content) == "" {
				continue
			}
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
	}
	return out
}
