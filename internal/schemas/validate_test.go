package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBundle_Valid(t *testing.T) {
	doc := `{
		"version": 1,
		"profile": {"personal_info": {"name": "Jordan Lee"}, "value_propositions": ["Ships"]},
		"experiences": [{"company": "Acme", "title": "Engineer", "start_date": "2020-01-01", "end_date": null}],
		"skills": [{"name": "Go", "rating": 5}],
		"projects": [{"name": "Docs", "type": "technical_writing"}],
		"education": [{"institution": "State U", "graduation_year": 2012}],
		"keywords": [{"term": "API design"}]
	}`

	assert.NoError(t, ValidateBundle([]byte(doc)))
}

func TestValidateBundle_MinimalAndNullProfile(t *testing.T) {
	assert.NoError(t, ValidateBundle([]byte(`{"version": 1}`)))
	assert.NoError(t, ValidateBundle([]byte(`{"version": 1, "profile": null}`)))
}

func TestValidateBundle_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing version", `{}`, "(root)"},
		{"unknown version", `{"version": 2}`, "version"},
		{"experience without title", `{"version": 1, "experiences": [{"company": "Acme"}]}`, "experiences.0"},
		{"rating out of range", `{"version": 1, "skills": [{"name": "Go", "rating": 9}]}`, "skills.0.rating"},
		{"unknown project type", `{"version": 1, "projects": [{"name": "X", "type": "art"}]}`, "projects.0.type"},
		{"profile without name", `{"version": 1, "profile": {"personal_info": {}}}`, "profile.personal_info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBundle([]byte(tt.doc))
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, e := range validationErr.Errors {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestValidateBundle_MalformedJSON(t *testing.T) {
	err := ValidateBundle([]byte(`{"version": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read document")
}

func TestValidateJSON(t *testing.T) {
	schema := []byte(`{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`)

	assert.NoError(t, ValidateJSON(schema, []byte(`{"name": "ok"}`)))

	err := ValidateJSON(schema, []byte(`{"name": 1}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Errors[0].Field)
}

func TestValidateJSON_BadSchema(t *testing.T) {
	err := ValidateJSON([]byte(`{"type": 12}`), []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}
