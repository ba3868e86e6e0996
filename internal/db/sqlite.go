package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit/internal/types"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite is a single-node usage database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies its
// migrations. Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=busy_timeout(5000)"
	}

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// one connection: sqlite has a single writer, and ":memory:" databases are per connection
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := runMigrations(ctx, pool, dialectSQLite); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &SQLite{db: pool}, nil
}

// Close closes the database
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// IncrementUsageIfBelow has the same contract as DB.IncrementUsageIfBelow.
func (s *SQLite) IncrementUsageIfBelow(ctx context.Context, accountID, period string, limit int) (int, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
INSERT INTO usage_counters (account_id, period, count)
VALUES (?, ?, 1)
ON CONFLICT (account_id, period) DO UPDATE
    SET count = usage_counters.count + 1, updated_at = CURRENT_TIMESTAMP
    WHERE ? < 0 OR usage_counters.count < ?
RETURNING count`,
		accountID, period, limit, limit,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment usage: %w", err)
	}
	return count, true, nil
}

// UsageCount returns the counter for period, zero when absent.
func (s *SQLite) UsageCount(ctx context.Context, accountID, period string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM usage_counters WHERE account_id = ? AND period = ?`,
		accountID, period,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get usage count: %w", err)
	}
	return count, nil
}

// InsertUsageEvent appends an approved attempt to the usage event log.
func (s *SQLite) InsertUsageEvent(ctx context.Context, event types.UsageEvent) error {
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_events (id, account_id, period, kind, document_kind, count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, event.AccountID, event.Period, string(event.Kind), string(event.DocumentKind), event.Count,
		event.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}
	return nil
}

// UsageEvents lists the events of an account for period, oldest first.
func (s *SQLite) UsageEvents(ctx context.Context, accountID, period string) ([]types.UsageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, period, kind, document_kind, count, created_at
		 FROM usage_events WHERE account_id = ? AND period = ? ORDER BY count`,
		accountID, period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}
	defer rows.Close()

	var events []types.UsageEvent
	for rows.Next() {
		var (
			e         types.UsageEvent
			kind, doc string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Period, &kind, &doc, &e.Count, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}
		e.Kind = types.GenerationKind(kind)
		e.DocumentKind = types.DocumentKind(doc)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}
