package db

import (
	"context"

	"github.com/google/uuid"
)

// GetProject retrieves a project record by ID.
// Returns nil, nil if not found.
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return getDocument[Project](ctx, db, projectsTable, id, decodeDocument[Project])
}

// ListProjects returns project records matching the filter in display order
func (db *DB) ListProjects(ctx context.Context, f ListFilter) ([]Project, error) {
	return listDocuments[Project](ctx, db, projectsTable, f, decodeDocument[Project])
}

// CreateProject inserts a new project record and populates its ID and timestamps
func (db *DB) CreateProject(ctx context.Context, rec *Project) error {
	return insertDocument(ctx, db, projectsTable, rec)
}

// UpdateProject replaces an existing project record. Returns ErrNotFound if the ID does not exist.
func (db *DB) UpdateProject(ctx context.Context, rec *Project) error {
	return updateDocument(ctx, db, projectsTable, rec)
}

// DeleteProject removes a project record. Returns ErrNotFound if the ID does not exist.
func (db *DB) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return deleteDocument(ctx, db, projectsTable, id)
}
