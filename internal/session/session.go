// Package session holds one learner's state for the lifetime of a run and
// keeps it mirrored into the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/abhisek/olive/internal/progress"
	"github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/store"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/transcript"
)

// DefaultAvatar is the learner's avatar until they pick one.
const DefaultAvatar = "😀"

// GeneralQuizTopic is the quiz topic while General Chat is active.
const GeneralQuizTopic = "General Knowledge"

// MaxAvatarRunes caps a custom avatar. Most emoji fit in one or two code
// points.
const MaxAvatarRunes = 2

// AvatarChoices is the picker grid on the home screen.
var AvatarChoices = []string{
	"😀", "😊", "🥳", "😎", "👾", "🤖",
	"🚀", "😺", "🐶", "🦉", "🦁", "🦄",
	"🌈", "☀️", "🌟", "💡", "🍔", "🍕",
	"🎈", "📚", "🧪", "📝", "🗺️", "🗣️",
}

var (
	// ErrTurnInProgress is returned when a second turn starts before the
	// first one finished.
	ErrTurnInProgress = errors.New("session: a turn is already in progress")

	// ErrInvalidAvatar is returned for empty or overlong avatars.
	ErrInvalidAvatar = errors.New("session: avatar must be 1 or 2 characters")

	// ErrNoStudySubject is returned when study mode is opened on General Chat.
	ErrNoStudySubject = errors.New("session: pick a subject other than General Chat to study")
)

// Mode is the section of the app the learner is in.
type Mode string

const (
	ModeHome  Mode = "home"
	ModeChat  Mode = "chat"
	ModeStudy Mode = "study"
	ModeQuiz  Mode = "quiz"
	ModeGames Mode = "games"
)

// Session is the explicit per-learner state threaded through every turn.
// The collections are safe for concurrent readers; mutations that belong
// to a turn must happen between BeginTurn and its release.
type Session struct {
	UserID string

	Subjects    *subject.Registry
	Transcripts *transcript.Store
	Progress    *progress.Counter
	Reminders   *reminder.List

	mirror store.LearnerRepo
	logger *log.Logger
	now    func() time.Time

	turn sync.Mutex

	mu     sync.RWMutex
	avatar string
	mode   Mode
	quiz   *quiz.Question

	// hydrated holds the transcript keys read from the mirror so far.
	hydrated map[transcript.Key]bool
}

// New creates a session for userID. A nil mirror keeps everything in
// memory; a nil logger discards log output.
func New(userID string, mirror store.LearnerRepo, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		UserID:      userID,
		Subjects:    subject.NewRegistry(),
		Transcripts: transcript.NewStore(),
		Progress:    progress.NewCounter(0),
		Reminders:   reminder.NewList(),
		mirror:      mirror,
		logger:      logger.With("user", userID),
		now:         time.Now,
		avatar:      DefaultAvatar,
		mode:        ModeHome,
	}
}

// Load rehydrates the session from the mirror and seeds the default
// subjects when none are stored. Storage failures are logged and the
// session continues from whatever could be read.
func (s *Session) Load(ctx context.Context) {
	var snap store.Snapshot
	loaded := true
	if s.mirror != nil {
		var err error
		snap, err = s.mirror.LoadSnapshot(ctx)
		if err != nil {
			s.logger.Error("load session", "err", err)
			snap = store.Snapshot{}
			loaded = false
		}
	}

	if len(snap.Subjects) > 0 {
		s.Subjects.Restore(snap.Subjects)
	} else {
		seeded := s.Subjects.SeedDefaults()
		// Seeds get fresh ids, so writing them after a failed read would
		// duplicate whatever is already stored.
		if loaded {
			s.saveSubjects(ctx, seeded)
		}
	}

	if snap.Profile != nil {
		s.mu.Lock()
		if snap.Profile.Avatar != "" {
			s.avatar = snap.Profile.Avatar
		}
		s.mu.Unlock()
		if snap.Profile.ActiveSubjectID != "" {
			// A stale selection falls back to the registry default.
			_, _ = s.Subjects.Select(snap.Profile.ActiveSubjectID)
		}
	} else if loaded {
		s.saveProfile(ctx)
	}

	s.Progress.Set(snap.LessonsCompleted)
	s.Reminders.Restore(snap.Reminders)

	s.logger.Debug("session loaded",
		"subjects", s.Subjects.Len(),
		"lessons", s.Progress.Value(),
		"reminders", s.Reminders.Len(),
	)
}

// Transcript returns the conversation for key, reading it from the mirror
// until one read succeeds. Messages added while the mirror was unreadable
// are kept after the stored history.
func (s *Session) Transcript(ctx context.Context, key transcript.Key) []transcript.Message {
	if s.mirror == nil {
		return s.Transcripts.Get(key)
	}

	s.mu.RLock()
	done := s.hydrated[key]
	s.mu.RUnlock()
	if done {
		return s.Transcripts.Get(key)
	}

	stored, err := s.mirror.LoadTranscript(ctx, key)
	if err != nil {
		s.logger.Error("load transcript", "key", key.String(), "err", err)
		return s.Transcripts.Get(key)
	}
	s.Transcripts.Load(key, mergeStored(stored, s.Transcripts.Get(key)))

	s.mu.Lock()
	if s.hydrated == nil {
		s.hydrated = make(map[transcript.Key]bool)
	}
	s.hydrated[key] = true
	s.mu.Unlock()
	return s.Transcripts.Get(key)
}

// mergeStored appends the in-memory messages that the stored history does
// not already end with.
func mergeStored(stored, recent []transcript.Message) []transcript.Message {
	overlap := 0
	for k := min(len(stored), len(recent)); k > 0; k-- {
		if sameMessages(stored[len(stored)-k:], recent[:k]) {
			overlap = k
			break
		}
	}
	out := make([]transcript.Message, 0, len(stored)+len(recent)-overlap)
	out = append(out, stored...)
	return append(out, recent[overlap:]...)
}

func sameMessages(a, b []transcript.Message) bool {
	for i := range a {
		if a[i].Role != b[i].Role || a[i].Content != b[i].Content {
			return false
		}
	}
	return true
}

func (s *Session) forgetTranscripts() {
	s.Transcripts.Clear()
	s.mu.Lock()
	s.hydrated = nil
	s.mu.Unlock()
}

// BeginTurn claims the session for one turn. The returned release must be
// called when the turn ends.
func (s *Session) BeginTurn() (release func(), err error) {
	if !s.turn.TryLock() {
		return nil, ErrTurnInProgress
	}
	var once sync.Once
	return func() { once.Do(s.turn.Unlock) }, nil
}

// Busy reports whether a turn is running.
func (s *Session) Busy() bool {
	if !s.turn.TryLock() {
		return true
	}
	s.turn.Unlock()
	return false
}

// Turn is one finished exchange ready to be recorded.
type Turn struct {
	Key       transcript.Key
	User      transcript.Message
	Assistant transcript.Message

	// Lesson marks the turn as a completed lesson. Failed turns are
	// recorded without counting.
	Lesson bool
}

// CommitTurn counts the turn and mirrors both messages and the counter
// change in one store transaction.
func (s *Session) CommitTurn(ctx context.Context, t Turn) progress.Step {
	step := progress.Step{Before: s.Progress.Value(), After: s.Progress.Value()}
	delta := 0
	if t.Lesson {
		delta = 1
		step = s.Progress.Increment(delta)
	}

	if s.mirror == nil {
		return step
	}
	stored, err := s.mirror.RecordTurn(ctx, store.TurnRecord{
		Key:          t.Key,
		User:         t.User,
		Assistant:    t.Assistant,
		LessonsDelta: delta,
	})
	if err != nil {
		s.logger.Error("record turn", "key", t.Key.String(), "err", err)
		return step
	}
	// Another host may have recorded lessons for the same learner.
	s.Progress.Set(stored)
	return step
}

// Avatar returns the learner's avatar.
func (s *Session) Avatar() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avatar
}

// SetAvatar changes the avatar. Any one or two character string is
// accepted so learners can paste their own emoji.
func (s *Session) SetAvatar(ctx context.Context, avatar string) error {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" || utf8.RuneCountInString(avatar) > MaxAvatarRunes {
		return fmt.Errorf("%w: %q", ErrInvalidAvatar, avatar)
	}
	s.mu.Lock()
	s.avatar = avatar
	s.mu.Unlock()
	s.saveProfile(ctx)
	return nil
}

// Mode returns the current section.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches section.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// StartChat leaves the home screen for General Chat.
func (s *Session) StartChat(ctx context.Context) {
	if _, err := s.Subjects.Select(subject.GeneralID); err == nil {
		s.saveProfile(ctx)
	}
	s.SetMode(ModeChat)
}

// ChangeFriend returns to the avatar picker and drops cached transcripts.
// Stored history is untouched and reloads on the next read.
func (s *Session) ChangeFriend() {
	s.forgetTranscripts()
	s.SetMode(ModeHome)
}

// AddSubject registers a new subject, selects it and mirrors it.
func (s *Session) AddSubject(ctx context.Context, name, icon string) subject.Subject {
	subj := s.Subjects.Add(name, icon)
	position := s.Subjects.Len() - 1
	s.persist(ctx, "save subject", func(ctx context.Context, m store.LearnerRepo) error {
		return m.SaveSubject(ctx, subj, position)
	})
	s.saveProfile(ctx)
	return subj
}

// SelectSubject makes id the active subject.
func (s *Session) SelectSubject(ctx context.Context, id string) (subject.Subject, error) {
	subj, err := s.Subjects.Select(id)
	if err != nil {
		return subject.Subject{}, err
	}
	s.saveProfile(ctx)
	return subj, nil
}

// StudyGreeting is the first tutor message of a study transcript.
func StudyGreeting(subjectName string) string {
	return fmt.Sprintf("Hello! I'm your friendly %s tutor. What would you like to learn about today?", subjectName)
}

// OpenStudy enters study mode for the active subject and returns its
// transcript, greeting the learner the first time.
func (s *Session) OpenStudy(ctx context.Context) (subject.Subject, []transcript.Message, error) {
	subj := s.Subjects.Active()
	if subj.IsGeneral() {
		return subj, nil, ErrNoStudySubject
	}

	key := transcript.StudyKey(subj.ID)
	if msgs := s.Transcript(ctx, key); len(msgs) == 0 {
		greeting := s.Transcripts.Append(key, transcript.RoleAssistant, StudyGreeting(subj.Name))
		s.persist(ctx, "save greeting", func(ctx context.Context, m store.LearnerRepo) error {
			return m.AppendMessage(ctx, key, greeting)
		})
	}
	s.SetMode(ModeStudy)
	return subj, s.Transcripts.Get(key), nil
}

// AddReminder records r.
func (s *Session) AddReminder(ctx context.Context, r reminder.Reminder) {
	s.Reminders.Add(r)
	s.persist(ctx, "save reminder", func(ctx context.Context, m store.LearnerRepo) error {
		return m.SaveReminder(ctx, r)
	})
}

// RemindQuiz adds a quiz reminder for topic.
func (s *Session) RemindQuiz(ctx context.Context, topic string) reminder.Reminder {
	r := reminder.ForQuiz(topic, s.now())
	s.AddReminder(ctx, r)
	return r
}

// RemindRevision adds a revision reminder for topic.
func (s *Session) RemindRevision(ctx context.Context, topic string) reminder.Reminder {
	r := reminder.ForRevision(topic, s.now())
	s.AddReminder(ctx, r)
	return r
}

// QuizTopic names what a quiz on the active subject is about.
func (s *Session) QuizTopic() string {
	subj := s.Subjects.Active()
	if subj.IsGeneral() {
		return GeneralQuizTopic
	}
	return subj.Name
}

// RequestQuiz switches to quiz mode for the active subject and leaves a
// reminder for it. The previous question is dropped.
func (s *Session) RequestQuiz(ctx context.Context) string {
	topic := s.QuizTopic()
	s.RemindQuiz(ctx, topic)
	s.SetQuiz(nil)
	s.SetMode(ModeQuiz)
	return topic
}

// Quiz returns the question on screen, if any.
func (s *Session) Quiz() *quiz.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quiz
}

// SetQuiz replaces the question on screen.
func (s *Session) SetQuiz(q *quiz.Question) {
	s.mu.Lock()
	s.quiz = q
	s.mu.Unlock()
}

// Reset wipes the learner's stored and in-memory state and reseeds the
// default subjects.
func (s *Session) Reset(ctx context.Context) error {
	release, err := s.BeginTurn()
	if err != nil {
		return err
	}
	defer release()

	if s.mirror != nil {
		if err := s.mirror.Reset(ctx); err != nil {
			return fmt.Errorf("reset learner: %w", err)
		}
	}

	s.forgetTranscripts()
	s.Progress.Reset()
	s.Reminders.Restore(nil)
	s.Subjects.Restore(nil)
	s.mu.Lock()
	s.avatar = DefaultAvatar
	s.mode = ModeHome
	s.quiz = nil
	s.mu.Unlock()

	s.saveSubjects(ctx, s.Subjects.SeedDefaults())
	s.saveProfile(ctx)
	return nil
}

func (s *Session) saveSubjects(ctx context.Context, subjects []subject.Subject) {
	for i, subj := range subjects {
		s.persist(ctx, "save subject", func(ctx context.Context, m store.LearnerRepo) error {
			return m.SaveSubject(ctx, subj, i)
		})
	}
}

func (s *Session) saveProfile(ctx context.Context) {
	p := store.Profile{
		UserID:          s.UserID,
		Avatar:          s.Avatar(),
		ActiveSubjectID: s.Subjects.Active().ID,
	}
	s.persist(ctx, "save profile", func(ctx context.Context, m store.LearnerRepo) error {
		return m.SaveProfile(ctx, p)
	})
}

// persist runs one best-effort mirror write.
func (s *Session) persist(ctx context.Context, what string, fn func(context.Context, store.LearnerRepo) error) {
	if s.mirror == nil {
		return
	}
	if err := fn(ctx, s.mirror); err != nil {
		s.logger.Warn(what, "err", err)
	}
}
