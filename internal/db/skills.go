package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// GetSkill retrieves a skill record by ID.
// Returns nil, nil if not found.
func (db *DB) GetSkill(ctx context.Context, id uuid.UUID) (*Skill, error) {
	return getDocument[Skill](ctx, db, skillsTable, id, decodeSkill)
}

// ListSkills returns skill records matching the filter in display order
func (db *DB) ListSkills(ctx context.Context, f ListFilter) ([]Skill, error) {
	return listDocuments[Skill](ctx, db, skillsTable, f, decodeSkill)
}

// CreateSkill inserts a new skill record and populates its ID and timestamps
func (db *DB) CreateSkill(ctx context.Context, rec *Skill) error {
	return insertDocument(ctx, db, skillsTable, rec)
}

// UpdateSkill replaces an existing skill record. Returns ErrNotFound if the ID does not exist.
func (db *DB) UpdateSkill(ctx context.Context, rec *Skill) error {
	return updateDocument(ctx, db, skillsTable, rec)
}

// DeleteSkill removes a skill record. Returns ErrNotFound if the ID does not exist.
func (db *DB) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	return deleteDocument(ctx, db, skillsTable, id)
}

// legacySkill is the nested version 1 skill document
type legacySkill struct {
	Skill struct {
		Name   string `json:"name"`
		Level  string `json:"level"`
		Rating int    `json:"rating"`
	} `json:"skill"`
	Roles        []string `json:"roles"`
	Years        float64  `json:"years"`
	Tags         []string `json:"tags"`
	Keywords     []string `json:"keywords"`
	Featured     bool     `json:"featured"`
	DisplayOrder int      `json:"display_order"`
}

// decodeSkill decodes a stored skill, migrating version 1 documents to the flat shape
func decodeSkill(raw []byte, version int) (*Skill, error) {
	if version >= currentSchemaVersion {
		return decodeDocument[Skill](raw, version)
	}

	var legacy legacySkill
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("failed to decode version %d skill: %w", version, err)
	}
	return &Skill{
		Name:              legacy.Skill.Name,
		RelevantRoles:     legacy.Roles,
		Level:             legacy.Skill.Level,
		Rating:            legacy.Skill.Rating,
		YearsOfExperience: legacy.Years,
		Tags:              legacy.Tags,
		Keywords:          legacy.Keywords,
		Featured:          legacy.Featured,
		DisplayOrder:      legacy.DisplayOrder,
	}, nil
}
