package db

import (
	"context"

	"github.com/google/uuid"
)

// GetExperience retrieves an experience record by ID.
// Returns nil, nil if not found.
func (db *DB) GetExperience(ctx context.Context, id uuid.UUID) (*Experience, error) {
	return getDocument[Experience](ctx, db, experiencesTable, id, decodeDocument[Experience])
}

// ListExperiences returns experience records matching the filter in display order
func (db *DB) ListExperiences(ctx context.Context, f ListFilter) ([]Experience, error) {
	return listDocuments[Experience](ctx, db, experiencesTable, f, decodeDocument[Experience])
}

// CreateExperience inserts a new experience record and populates its ID and timestamps
func (db *DB) CreateExperience(ctx context.Context, rec *Experience) error {
	return insertDocument(ctx, db, experiencesTable, rec)
}

// UpdateExperience replaces an existing experience record. Returns ErrNotFound if the ID does not exist.
func (db *DB) UpdateExperience(ctx context.Context, rec *Experience) error {
	return updateDocument(ctx, db, experiencesTable, rec)
}

// DeleteExperience removes an experience record. Returns ErrNotFound if the ID does not exist.
func (db *DB) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	return deleteDocument(ctx, db, experiencesTable, id)
}
