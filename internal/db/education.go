package db

import (
	"context"

	"github.com/google/uuid"
)

// GetEducation retrieves an education record by ID.
// Returns nil, nil if not found.
func (db *DB) GetEducation(ctx context.Context, id uuid.UUID) (*Education, error) {
	return getDocument[Education](ctx, db, educationTable, id, decodeDocument[Education])
}

// ListEducation returns education records matching the filter in display order
func (db *DB) ListEducation(ctx context.Context, f ListFilter) ([]Education, error) {
	return listDocuments[Education](ctx, db, educationTable, f, decodeDocument[Education])
}

func (db *DB) CreateEducation(ctx context.Context, rec *Education) error {
	return insertDocument(ctx, db, educationTable, rec)
}

func (db *DB) UpdateEducation(ctx context.Context, rec *Education) error {
	return updateDocument(ctx, db, educationTable, rec)
}

func (db *DB) DeleteEducation(ctx context.Context, id uuid.UUID) error {
	return deleteDocument(ctx, db, educationTable, id)
}
