package prompts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("assistant.json", "directives")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Quantify impact")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("tailoring.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestEmbeddedKeysPresent(t *testing.T) {
	for _, key := range []string{"preamble", "directives", "closing"} {
		assert.NotPanics(t, func() { MustGet(assistantFile, key) }, key)
	}
	for _, kind := range []string{"resume", "cover_letter", "question_answer"} {
		assert.NotPanics(t, func() { MustGet(tailoringFile, "task-"+kind) }, kind)
		assert.NotPanics(t, func() { MustGet(tailoringFile, "output-"+kind) }, kind)
	}
	assert.NotPanics(t, func() { MustGet(tailoringFile, "user-generate") })
	assert.NotPanics(t, func() { MustGet(tailoringFile, "user-revise") })
}

func TestLibrary_ParseError(t *testing.T) {
	lib := newLibrary(fstest.MapFS{"bad.json": {Data: []byte(`{not json`)}})
	_, err := lib.get("bad.json", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse prompt file")
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}! {{.Unknown}}"
	result := Format(template, map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	})
	assert.Equal(t, "Hello Alice, welcome to Acme Corp! {{.Unknown}}", result)
	assert.Equal(t, template, Format(template, nil))
}
