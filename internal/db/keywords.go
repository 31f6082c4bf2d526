package db

import (
	"context"

	"github.com/google/uuid"
)

// GetKeyword retrieves a keyword record by ID.
// Returns nil, nil if not found.
func (db *DB) GetKeyword(ctx context.Context, id uuid.UUID) (*Keyword, error) {
	return getDocument[Keyword](ctx, db, keywordsTable, id, decodeDocument[Keyword])
}

// ListKeywords returns keyword records matching the filter in display order
func (db *DB) ListKeywords(ctx context.Context, f ListFilter) ([]Keyword, error) {
	return listDocuments[Keyword](ctx, db, keywordsTable, f, decodeDocument[Keyword])
}

func (db *DB) CreateKeyword(ctx context.Context, rec *Keyword) error {
	return insertDocument(ctx, db, keywordsTable, rec)
}

func (db *DB) UpdateKeyword(ctx context.Context, rec *Keyword) error {
	return updateDocument(ctx, db, keywordsTable, rec)
}

func (db *DB) DeleteKeyword(ctx context.Context, id uuid.UUID) error {
	return deleteDocument(ctx, db, keywordsTable, id)
}
