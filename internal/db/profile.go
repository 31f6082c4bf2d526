package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetProfile retrieves the singleton profile.
// Returns nil, nil when no profile has been saved yet.
func (db *DB) GetProfile(ctx context.Context) (*Profile, error) {
	var (
		raw       []byte
		updatedAt time.Time
	)
	err := db.q.QueryRow(ctx,
		`SELECT doc, updated_at FROM profile WHERE id = 1`,
	).Scan(&raw, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	profile.UpdatedAt = updatedAt
	return &profile, nil
}

// UpsertProfile creates or replaces the singleton profile and sets its UpdatedAt
func (db *DB) UpsertProfile(ctx context.Context, profile *Profile) error {
	clone := *profile
	clone.UpdatedAt = time.Time{}
	doc, err := json.Marshal(&clone)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	err = db.q.QueryRow(ctx,
		`INSERT INTO profile (id, doc, updated_at) VALUES (1, $1, NOW())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
		 RETURNING updated_at`,
		doc,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
