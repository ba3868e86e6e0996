package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/jobfit/internal/types"
)

// incrementUsageSQL increments the counter only while it is below the limit; a
// negative limit means no cap. Either way the row is locked for the duration of
// the statement, so concurrent increments for one account serialize.
const incrementUsageSQL = `
INSERT INTO usage_counters (account_id, period, count)
VALUES ($1, $2, 1)
ON CONFLICT (account_id, period) DO UPDATE
    SET count = usage_counters.count + 1, updated_at = NOW()
    WHERE $3::int < 0 OR usage_counters.count < $3::int
RETURNING count`

// IncrementUsageIfBelow atomically increments the account's counter for period
// when it is below limit. It returns the post-increment count and true, or
// false when the limit was reached (the count is then unchanged). limit must
// be at least 1 or negative for no limit.
func (db *DB) IncrementUsageIfBelow(ctx context.Context, accountID, period string, limit int) (int, bool, error) {
	var count int
	err := db.pool.QueryRow(ctx, incrementUsageSQL, accountID, period, limit).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment usage: %w", err)
	}
	return count, true, nil
}

// UsageCount returns the counter for period, zero when absent.
func (db *DB) UsageCount(ctx context.Context, accountID, period string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT count FROM usage_counters WHERE account_id = $1 AND period = $2`,
		accountID, period,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get usage count: %w", err)
	}
	return count, nil
}

// InsertUsageEvent appends an approved attempt to the usage event log.
func (db *DB) InsertUsageEvent(ctx context.Context, event types.UsageEvent) error {
	id, err := uuid.Parse(event.ID)
	if err != nil {
		id = uuid.New()
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO usage_events (id, account_id, period, kind, document_kind, count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, event.AccountID, event.Period, string(event.Kind), string(event.DocumentKind), event.Count, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}
	return nil
}
