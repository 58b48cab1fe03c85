package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on every Open. Statements must be idempotent.
// Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id        TEXT PRIMARY KEY,
		avatar         TEXT NOT NULL DEFAULT '',
		active_subject TEXT NOT NULL DEFAULT 'general',
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		name       TEXT NOT NULL,
		icon       TEXT NOT NULL DEFAULT '',
		position   INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		space      TEXT NOT NULL,
		conv_id    TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS messages_conversation ON messages (user_id, space, conv_id, id)`,
	`CREATE TABLE IF NOT EXISTS progress (
		user_id           TEXT PRIMARY KEY,
		lessons_completed INTEGER NOT NULL DEFAULT 0,
		updated_at        INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		text       TEXT NOT NULL,
		type       TEXT NOT NULL,
		due_date   INTEGER,
		created_at INTEGER NOT NULL,
		completed  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		streamed      INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

// learnerTables lists every table scoped by user_id.
var learnerTables = []string{"messages", "subjects", "reminders", "progress", "profiles"}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
