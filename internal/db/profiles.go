package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/jobfit/internal/types"
)

// ErrProfileNotFound is returned by UpdateProfileSkills for unknown accounts
var ErrProfileNotFound = errors.New("profile not found")

// GetProfile returns the stored profile for an account, or nil if none exists
func (db *DB) GetProfile(ctx context.Context, accountID string) (*types.CandidateProfile, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx,
		`SELECT profile FROM candidate_profiles WHERE account_id = $1`,
		accountID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile types.CandidateProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// UpsertProfile creates or replaces an account's profile
func (db *DB) UpsertProfile(ctx context.Context, accountID string, profile *types.CandidateProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = db.pool.Exec(ctx, `
		INSERT INTO candidate_profiles (account_id, profile)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE
		    SET profile = EXCLUDED.profile, updated_at = NOW()`,
		accountID, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// UpdateProfileSkills reads the account's skills under a row lock, applies fn
// and writes the result back when fn reports a change. Concurrent updates to one
// account are serialized.
func (db *DB) UpdateProfileSkills(ctx context.Context, accountID string, fn func(*types.SkillMap) (bool, error)) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT profile FROM candidate_profiles WHERE account_id = $1 FOR UPDATE`,
		accountID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock profile: %w", err)
	}

	var profile types.CandidateProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	changed, err := fn(&profile.Skills)
	if err != nil {
		return err
	}
	if !changed {
		return tx.Commit(ctx)
	}

	updated, err := json.Marshal(&profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE candidate_profiles SET profile = $2, updated_at = NOW() WHERE account_id = $1`,
		accountID, updated,
	); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit profile update: %w", err)
	}
	return nil
}
