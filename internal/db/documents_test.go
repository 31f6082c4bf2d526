package db

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		table     table
		filter    ListFilter
		wantWhere []string
		wantArgs  []any
	}{
		{
			name:     "no filter",
			table:    experiencesTable,
			wantArgs: []any{},
		},
		{
			name:      "role filter",
			table:     experiencesTable,
			filter:    ListFilter{RoleType: "software_engineer"},
			wantWhere: []string{"doc -> 'role_types' @> jsonb_build_array($1::text)"},
			wantArgs:  []any{"software_engineer"},
		},
		{
			name:      "skills use relevant_roles",
			table:     skillsTable,
			filter:    ListFilter{RoleType: "technical_writer"},
			wantWhere: []string{"doc -> 'relevant_roles' @> jsonb_build_array($1::text)", "doc -> 'roles' @> jsonb_build_array($1::text)"},
			wantArgs:  []any{"technical_writer"},
		},
		{
			name:      "all filters",
			table:     experiencesTable,
			filter:    ListFilter{RoleType: "engineering_manager", Featured: Bool(true), Limit: 3},
			wantWhere: []string{"@> jsonb_build_array($1::text)", "featured = $2", "LIMIT $3"},
			wantArgs:  []any{"engineering_manager", true, 3},
		},
		{
			name:     "role ignored for education",
			table:    educationTable,
			filter:   ListFilter{RoleType: "software_engineer"},
			wantArgs: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.table, tt.filter)
			assert.Contains(t, query, "FROM "+tt.table.name)
			assert.Contains(t, query, "ORDER BY display_order ASC, created_at ASC")
			for _, w := range tt.wantWhere {
				assert.Contains(t, query, w)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildListQuery_LimitAfterOrder(t *testing.T) {
	query, _ := buildListQuery(projectsTable, ListFilter{Limit: 2})
	assert.Regexp(t, `ORDER BY .* LIMIT \$1$`, query)
}

func TestEncodeDocument_OmitsMeta(t *testing.T) {
	exp := &Experience{
		Meta:    Meta{ID: uuid.New()},
		Company: "Acme",
		Title:   "Engineer",
	}

	raw, err := encodeDocument(exp)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "id")
	assert.NotContains(t, doc, "created_at")
	assert.Equal(t, "Acme", doc["company"])

	// caller's record is untouched
	assert.NotEqual(t, uuid.Nil, exp.ID)
}

func TestDecodeSkill_CurrentVersion(t *testing.T) {
	raw := []byte(`{"name":"Go","relevant_roles":["software_engineer"],"level":"expert","rating":5,"years_of_experience":6}`)

	skill, err := decodeSkill(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, "Go", skill.Name)
	assert.Equal(t, []string{"software_engineer"}, skill.RelevantRoles)
	assert.Equal(t, 5, skill.Rating)
	assert.InDelta(t, 6.0, skill.YearsOfExperience, 0.001)
}

func TestDecodeSkill_MigratesLegacyShape(t *testing.T) {
	raw := []byte(`{
		"skill": {"name": "Docs-as-code", "level": "advanced", "rating": 4},
		"roles": ["technical_writer", "technical_writing_manager"],
		"years": 3.5,
		"tags": ["docs"],
		"featured": true,
		"display_order": 2
	}`)

	skill, err := decodeSkill(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, "Docs-as-code", skill.Name)
	assert.Equal(t, "advanced", skill.Level)
	assert.Equal(t, 4, skill.Rating)
	assert.Equal(t, []string{"technical_writer", "technical_writing_manager"}, skill.RelevantRoles)
	assert.InDelta(t, 3.5, skill.YearsOfExperience, 0.001)
	assert.Equal(t, []string{"docs"}, skill.Tags)
	assert.True(t, skill.Featured)
	assert.Equal(t, 2, skill.DisplayOrder)
}

func TestDecodeSkill_InvalidJSON(t *testing.T) {
	_, err := decodeSkill([]byte(`{not json`), 1)
	assert.Error(t, err)

	_, err = decodeSkill([]byte(`{not json`), 2)
	assert.Error(t, err)
}
