// Package store persists aggregation snapshots in a libsql database so
// previous-period comparisons do not have to re-query the tracking
// daemon. The database is a local file by default; a remote Turso URL
// plus auth token can be supplied through the environment.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/mbellini/effwatch/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	period_type   TEXT NOT NULL,
	period_start  TEXT NOT NULL,
	period_end    TEXT NOT NULL,
	result        TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	UNIQUE(period_type, period_start)
);`

// ErrNotFound is returned when no snapshot exists for a period.
var ErrNotFound = errors.New("snapshot not found")

// Store reads and writes aggregation snapshots.
type Store struct {
	db *sql.DB
}

// Open connects to the snapshot database. databaseURL is either a local
// "file:" DSN or a remote libsql URL; authToken may be empty for local
// files.
func Open(databaseURL, authToken string) (*Store, error) {
	connStr := databaseURL
	if authToken != "" {
		connStr += "?authToken=" + authToken
	}
	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	// Single-writer batch tool; a small pool is plenty, and remote
	// libsql closes idle streams aggressively.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the snapshot for the result's period. Reruns for the
// same period replace the earlier snapshot.
func (s *Store) Save(ctx context.Context, res *domain.AggregationResult) error {
	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, period_type, period_start, period_end, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(period_type, period_start) DO UPDATE SET
			period_end = excluded.period_end,
			result     = excluded.result,
			created_at = excluded.created_at`,
		uuid.NewString(),
		string(res.Period.Type),
		res.Period.Start.Format(time.RFC3339),
		res.Period.End.Format(time.RFC3339),
		string(blob),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot stored for the period, or ErrNotFound.
// Matching is by period type and start date so that a rerun later the
// same day still finds its earlier snapshot.
func (s *Store) Get(ctx context.Context, p domain.Period) (*domain.AggregationResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT result FROM snapshots
		WHERE period_type = ? AND date(period_start) = date(?)`,
		string(p.Type), p.Start.Format(time.RFC3339))

	var blob string
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var res domain.AggregationResult
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &res, nil
}

// ListEntry is one row of the snapshot history listing.
type ListEntry struct {
	PeriodType     string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ActiveDuration time.Duration
	TotalDuration  time.Duration
	CreatedAt      time.Time
}

// List returns stored snapshots, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]ListEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT period_type, period_start, period_end, result, created_at
		FROM snapshots ORDER BY period_start DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var entries []ListEntry
	for rows.Next() {
		var e ListEntry
		var start, end, created, blob string
		if err := rows.Scan(&e.PeriodType, &start, &end, &blob, &created); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		e.PeriodStart, _ = time.Parse(time.RFC3339, start)
		e.PeriodEnd, _ = time.Parse(time.RFC3339, end)
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)

		var res domain.AggregationResult
		if err := json.Unmarshal([]byte(blob), &res); err == nil {
			e.ActiveDuration = res.ActiveDuration
			e.TotalDuration = res.TotalDuration
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
