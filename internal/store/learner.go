package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/transcript"
)

// LearnerStore implements LearnerRepo for one user id. Every row it reads
// or writes is scoped by that id.
type LearnerStore struct {
	db     *sql.DB
	userID string
}

var _ LearnerRepo = (*LearnerStore)(nil)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserID returns the namespace this store writes to.
func (l *LearnerStore) UserID() string { return l.userID }

func (l *LearnerStore) owned() *entsql.Predicate {
	return entsql.EQ("user_id", l.userID)
}

func (l *LearnerStore) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	profile, err := l.loadProfile(ctx)
	if err != nil {
		return snap, err
	}
	snap.Profile = profile

	if snap.Subjects, err = l.loadSubjects(ctx); err != nil {
		return snap, err
	}
	if snap.LessonsCompleted, err = lessonsCompleted(ctx, l.db, l.userID); err != nil {
		return snap, err
	}
	if snap.Reminders, err = l.loadReminders(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

func (l *LearnerStore) loadProfile(ctx context.Context) (*Profile, error) {
	query, args := builder().
		Select("avatar", "active_subject", "created_at", "updated_at").
		From(entsql.Table("profiles")).
		Where(l.owned()).
		Query()

	p := Profile{UserID: l.userID}
	var created, updated int64
	err := l.db.QueryRowContext(ctx, query, args...).Scan(&p.Avatar, &p.ActiveSubjectID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &p, nil
}

func (l *LearnerStore) loadSubjects(ctx context.Context) ([]subject.Subject, error) {
	query, args := builder().
		Select("id", "name", "icon").
		From(entsql.Table("subjects")).
		Where(l.owned()).
		OrderBy("position", "created_at").
		Query()

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	defer rows.Close()

	var out []subject.Subject
	for rows.Next() {
		var s subject.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Icon); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (l *LearnerStore) loadReminders(ctx context.Context) ([]reminder.Reminder, error) {
	query, args := builder().
		Select("id", "text", "type", "due_date", "created_at", "completed").
		From(entsql.Table("reminders")).
		Where(l.owned()).
		OrderBy("created_at", "id").
		Query()

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	defer rows.Close()

	var out []reminder.Reminder
	for rows.Next() {
		var (
			r         reminder.Reminder
			typ       string
			due       sql.NullInt64
			created   int64
			completed int
		)
		if err := rows.Scan(&r.ID, &r.Text, &typ, &due, &created, &completed); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		r.Type = reminder.Type(typ)
		r.CreatedAt = fromMillis(created)
		r.Completed = completed != 0
		if due.Valid {
			d := fromMillis(due.Int64)
			r.DueDate = &d
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *LearnerStore) LoadTranscript(ctx context.Context, key transcript.Key) ([]transcript.Message, error) {
	query, args := builder().
		Select("role", "content", "created_at").
		From(entsql.Table("messages")).
		Where(entsql.And(
			l.owned(),
			entsql.EQ("space", string(key.Space)),
			entsql.EQ("conv_id", key.ID),
		)).
		OrderBy("id").
		Query()

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", key, err)
	}
	defer rows.Close()

	out := []transcript.Message{}
	for rows.Next() {
		var (
			m       transcript.Message
			role    string
			created int64
		)
		if err := rows.Scan(&role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = transcript.Role(role)
		if !m.Role.Valid() {
			return nil, fmt.Errorf("load transcript %s: unknown role %q", key, role)
		}
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (l *LearnerStore) SaveProfile(ctx context.Context, p Profile) error {
	now := time.Now().UnixMilli()
	created := toMillis(p.CreatedAt)
	if created == 0 {
		created = now
	}
	active := p.ActiveSubjectID
	if active == "" {
		active = subject.GeneralID
	}

	query, args := builder().
		Insert("profiles").
		Columns("user_id", "avatar", "active_subject", "created_at", "updated_at").
		Values(l.userID, p.Avatar, active, created, now).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("avatar")
				u.SetExcluded("active_subject")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (l *LearnerStore) SaveSubject(ctx context.Context, s subject.Subject, position int) error {
	query, args := builder().
		Insert("subjects").
		Columns("user_id", "id", "name", "icon", "position", "created_at").
		Values(l.userID, s.ID, s.Name, s.Icon, position, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("user_id", "id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("name")
				u.SetExcluded("icon")
				u.SetExcluded("position")
			}),
		).
		Query()

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save subject %s: %w", s.ID, err)
	}
	return nil
}

func (l *LearnerStore) SaveReminder(ctx context.Context, r reminder.Reminder) error {
	var due any
	if r.DueDate != nil {
		due = r.DueDate.UnixMilli()
	}
	query, args := builder().
		Insert("reminders").
		Columns("user_id", "id", "text", "type", "due_date", "created_at", "completed").
		Values(l.userID, r.ID, r.Text, string(r.Type), due, toMillis(r.CreatedAt), boolInt(r.Completed)).
		OnConflict(
			entsql.ConflictColumns("user_id", "id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save reminder %s: %w", r.ID, err)
	}
	return nil
}

func (l *LearnerStore) AppendMessage(ctx context.Context, key transcript.Key, msg transcript.Message) error {
	return appendMessage(ctx, l.db, l.userID, key, msg)
}

func (l *LearnerStore) RecordTurn(ctx context.Context, turn TurnRecord) (int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin turn: %w", err)
	}
	defer tx.Rollback()

	if err := appendMessage(ctx, tx, l.userID, turn.Key, turn.User); err != nil {
		return 0, err
	}
	if err := appendMessage(ctx, tx, l.userID, turn.Key, turn.Assistant); err != nil {
		return 0, err
	}
	if turn.LessonsDelta > 0 {
		if err := addLessons(ctx, tx, l.userID, turn.LessonsDelta); err != nil {
			return 0, err
		}
	}
	total, err := lessonsCompleted(ctx, tx, l.userID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit turn: %w", err)
	}
	return total, nil
}

func (l *LearnerStore) Reset(ctx context.Context) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range learnerTables {
		query, args := builder().Delete(table).Where(l.owned()).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func appendMessage(ctx context.Context, db execer, userID string, key transcript.Key, msg transcript.Message) error {
	created := toMillis(msg.CreatedAt)
	if created == 0 {
		created = time.Now().UnixMilli()
	}
	query, args := builder().
		Insert("messages").
		Columns("user_id", "space", "conv_id", "role", "content", "created_at").
		Values(userID, string(key.Space), key.ID, string(msg.Role), msg.Content, created).
		Query()

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append message to %s: %w", key, err)
	}
	return nil
}

func addLessons(ctx context.Context, db execer, userID string, delta int) error {
	now := time.Now().UnixMilli()
	query, args := builder().
		Insert("progress").
		Columns("user_id", "lessons_completed", "updated_at").
		Values(userID, delta, now).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("lessons_completed", delta)
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment progress: %w", err)
	}
	return nil
}

func lessonsCompleted(ctx context.Context, db execer, userID string) (int, error) {
	query, args := builder().
		Select("lessons_completed").
		From(entsql.Table("progress")).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var n int
	err := db.QueryRowContext(ctx, query, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}
	return n, nil
}

// ResolveUser picks the learner namespace to use. An explicit id is created
// on first use; otherwise the most recently active profile wins, and a new
// anonymous id is minted when no profile exists.
func (s *Store) ResolveUser(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		if err := s.ensureProfile(ctx, requested); err != nil {
			return "", err
		}
		return requested, nil
	}

	query, args := builder().
		Select("user_id").
		From(entsql.Table("profiles")).
		OrderBy(entsql.Desc("updated_at")).
		Limit(1).
		Query()

	var id string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("find profile: %w", err)
	}

	id = uuid.NewString()
	if err := s.ensureProfile(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ensureProfile(ctx context.Context, userID string) error {
	now := time.Now().UnixMilli()
	query, args := builder().
		Insert("profiles").
		Columns("user_id", "avatar", "active_subject", "created_at", "updated_at").
		Values(userID, "", subject.GeneralID, now, now).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.DoNothing(),
		).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}
