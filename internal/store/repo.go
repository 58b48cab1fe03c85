package store

import (
	"context"
	"time"

	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/transcript"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
}

// Profile is the per-learner settings row.
type Profile struct {
	UserID          string
	Avatar          string
	ActiveSubjectID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot is everything needed to rehydrate a learner's session except
// transcripts, which load lazily.
type Snapshot struct {
	Profile          *Profile
	Subjects         []subject.Subject
	LessonsCompleted int
	Reminders        []reminder.Reminder
}

// TurnRecord is one completed exchange written atomically.
type TurnRecord struct {
	Key          transcript.Key
	User         transcript.Message
	Assistant    transcript.Message
	LessonsDelta int
}

// LearnerRepo mirrors one learner's state into durable storage.
type LearnerRepo interface {
	// LoadSnapshot reads profile, subjects, progress and reminders.
	LoadSnapshot(ctx context.Context) (Snapshot, error)

	// LoadTranscript reads one conversation in insertion order.
	LoadTranscript(ctx context.Context, key transcript.Key) ([]transcript.Message, error)

	// SaveProfile upserts the profile row.
	SaveProfile(ctx context.Context, p Profile) error

	// SaveSubject upserts a subject at the given list position.
	SaveSubject(ctx context.Context, s subject.Subject, position int) error

	// SaveReminder upserts a reminder.
	SaveReminder(ctx context.Context, r reminder.Reminder) error

	// AppendMessage appends a single message outside a turn.
	AppendMessage(ctx context.Context, key transcript.Key, msg transcript.Message) error

	// RecordTurn writes both messages and the progress delta in one
	// transaction and returns the stored lesson count.
	RecordTurn(ctx context.Context, turn TurnRecord) (int, error)

	// Reset deletes everything stored for the learner.
	Reset(ctx context.Context) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	Streamed     bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
