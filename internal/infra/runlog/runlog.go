// Package runlog keeps a local SQLite journal of scheduler and worker
// invocations so an operator can see what the runner has been doing without
// digging through log files.
package runlog

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Entry struct {
	ID         int64      `json:"id"`
	Kind       string     `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status"`
	Detail     string     `json:"detail,omitempty"`
}

type Log struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	kind        TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	status      TEXT NOT NULL DEFAULT 'running',
	detail      TEXT NOT NULL DEFAULT ''
);
`

func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Log{db: db}, nil
}

func (l *Log) Close() error { return l.db.Close() }

// Begin records an invocation start and returns its row id.
func (l *Log) Begin(ctx context.Context, kind string) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (kind, started_at) VALUES (?, ?)`,
		kind, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Finish closes an invocation record. status is "ok" or "failed"; detail is
// a short human summary (counts or the error text).
func (l *Log) Finish(ctx context.Context, id int64, status, detail string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, detail = ? WHERE id = ?`,
		time.Now().UTC(), status, detail, id)
	return err
}

func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, kind, started_at, finished_at, status, detail
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var finished sql.NullTime
		if err := rows.Scan(&e.ID, &e.Kind, &e.StartedAt, &finished, &e.Status, &e.Detail); err != nil {
			return nil, err
		}
		if finished.Valid {
			e.FinishedAt = &finished.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
