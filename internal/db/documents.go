package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// currentSchemaVersion is written with every insert and update
const currentSchemaVersion = 2

// document is implemented by every list record type
type document interface {
	meta() *Meta
	flags() (featured bool, displayOrder int)
}

// table describes a document table. roleField is the JSONB key holding role
// tags, empty when the table cannot be filtered by role. legacyRoleField is
// the key older schema versions used for the same tags.
type table struct {
	name            string
	roleField       string
	legacyRoleField string
}

var (
	experiencesTable = table{name: "experiences", roleField: "role_types"}
	skillsTable      = table{name: "skills", roleField: "relevant_roles", legacyRoleField: "roles"}
	projectsTable    = table{name: "projects", roleField: "role_types"}
	educationTable   = table{name: "education"}
	keywordsTable    = table{name: "keywords", roleField: "role_types"}
)

const documentColumns = "id, doc, schema_version, created_at, updated_at"

// decodeFunc turns a stored document into a record, migrating older schema versions
type decodeFunc[T any] func(raw []byte, version int) (*T, error)

func decodeDocument[T any](raw []byte, _ int) (*T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// encodeDocument serializes a record without its storage-managed fields
func encodeDocument[T any, P interface {
	*T
	document
}](rec *T) ([]byte, error) {
	clone := *rec
	*P(&clone).meta() = Meta{}
	return json.Marshal(&clone)
}

func scanDocument[T any, P interface {
	*T
	document
}](row pgx.Row, decode decodeFunc[T]) (*T, error) {
	var (
		id              uuid.UUID
		raw             []byte
		version         int
		createdAt, upAt time.Time
	)
	if err := row.Scan(&id, &raw, &version, &createdAt, &upAt); err != nil {
		return nil, err
	}

	rec, err := decode(raw, version)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}

	m := P(rec).meta()
	m.ID = id
	m.CreatedAt = createdAt
	m.UpdatedAt = upAt
	return rec, nil
}

// buildListQuery returns the SELECT statement and arguments for a filtered listing.
// Rows come back in source order: display_order, then creation time.
func buildListQuery(t table, f ListFilter) (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1", documentColumns, t.name)
	args := []any{}
	argNum := 1

	if f.RoleType != "" && t.roleField != "" {
		if t.legacyRoleField != "" {
			query += fmt.Sprintf(" AND (doc -> '%s' @> jsonb_build_array($%d::text) OR doc -> '%s' @> jsonb_build_array($%d::text))",
				t.roleField, argNum, t.legacyRoleField, argNum)
		} else {
			query += fmt.Sprintf(" AND doc -> '%s' @> jsonb_build_array($%d::text)", t.roleField, argNum)
		}
		args = append(args, f.RoleType)
		argNum++
	}
	if f.Featured != nil {
		query += fmt.Sprintf(" AND featured = $%d", argNum)
		args = append(args, *f.Featured)
		argNum++
	}

	query += " ORDER BY display_order ASC, created_at ASC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, f.Limit)
	}

	return query, args
}

func getDocument[T any, P interface {
	*T
	document
}](ctx context.Context, db *DB, t table, id uuid.UUID, decode decodeFunc[T]) (*T, error) {
	row := db.q.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", documentColumns, t.name),
		id,
	)
	rec, err := scanDocument[T, P](row, decode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s record: %w", t.name, err)
	}
	return rec, nil
}

func listDocuments[T any, P interface {
	*T
	document
}](ctx context.Context, db *DB, t table, f ListFilter, decode decodeFunc[T]) ([]T, error) {
	query, args := buildListQuery(t, f)

	rows, err := db.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		rec, err := scanDocument[T, P](rows, decode)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", t.name, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	return records, nil
}

// insertDocument stores rec and fills in its ID and timestamps
func insertDocument[T any, P interface {
	*T
	document
}](ctx context.Context, db *DB, t table, rec *T) error {
	doc, err := encodeDocument[T, P](rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", t.name, err)
	}
	featured, order := P(rec).flags()

	m := P(rec).meta()
	err = db.q.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (doc, schema_version, featured, display_order)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`, t.name),
		doc, currentSchemaVersion, featured, order,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s record: %w", t.name, err)
	}
	return nil
}

// updateDocument replaces the stored document for rec's ID. Last write wins.
func updateDocument[T any, P interface {
	*T
	document
}](ctx context.Context, db *DB, t table, rec *T) error {
	doc, err := encodeDocument[T, P](rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", t.name, err)
	}
	featured, order := P(rec).flags()

	m := P(rec).meta()
	err = db.q.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s
		 SET doc = $2, schema_version = $3, featured = $4, display_order = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`, t.name),
		m.ID, doc, currentSchemaVersion, featured, order,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update %s record: %w", t.name, err)
	}
	return nil
}

func deleteDocument(ctx context.Context, db *DB, t table, id uuid.UUID) error {
	result, err := db.q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", t.name, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
