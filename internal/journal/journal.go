// Package journal records supervisor events in a SQLite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type EventKind string

const (
	EventKind_Load         EventKind = "load"
	EventKind_LoadFailed   EventKind = "load_failed"
	EventKind_Reload       EventKind = "reload"
	EventKind_ReloadFailed EventKind = "reload_failed"
	EventKind_Fault        EventKind = "fault"
	EventKind_Quit         EventKind = "quit"
)

type Event struct {
	ID         int64
	At         time.Time
	Kind       EventKind
	Module     string
	EntryPoint string
	Detail     string
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	at          INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	module      TEXT NOT NULL,
	entry_point TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_at ON events(at);
`

func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = j.now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (at, kind, module, entry_point, detail) VALUES (?, ?, ?, ?, ?)`,
		ev.At.UTC().UnixMilli(), string(ev.Kind), ev.Module, ev.EntryPoint, ev.Detail)
	if err != nil {
		return fmt.Errorf("record %s event: %w", ev.Kind, err)
	}
	return nil
}

// Recent returns up to n events, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, at, kind, module, entry_point, detail FROM events ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev   Event
			at   int64
			kind string
		)
		if err := rows.Scan(&ev.ID, &at, &kind, &ev.Module, &ev.EntryPoint, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.At = time.UnixMilli(at).UTC()
		ev.Kind = EventKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}
