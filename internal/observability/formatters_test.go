package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/bundle"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
	"github.com/jonathan/career-admin/internal/types"
)

func TestPrintContext(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	c := aicontext.Stub(aicontext.Request{Collection: "skills", ItemID: "abc", RoleType: types.RoleSoftwareEngineer})
	c.ProfileSummary.Name = "Ada Lovelace"
	c.CurrentItem = &db.Skill{Name: "Go"}
	c.RelatedContext.Skills = []db.Skill{{Name: "Go"}, {Name: "Rust"}}
	c.RelatedContext.Keywords = []string{"a", "b", "c", "d", "e", "f", "g"}
	c.RelatedContext.RelatedExperiences = []db.Experience{{Title: "Engineer", Company: "Acme"}}

	p.PrintContext(c)
	output := buf.String()

	assert.Contains(t, output, "AI CONTEXT")
	assert.Contains(t, output, "Collection: skills")
	assert.Contains(t, output, "Software Engineer")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "Item found: true")
	assert.Contains(t, output, "Skills (2)")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "Engineer at Acme")
	assert.Contains(t, output, "Related projects: none")
}

func TestPrintContext_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintContext(nil)
	assert.Empty(t, buf.String())
}

func TestPrintPrompt(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPrompt("SYSTEM PROMPT", []string{"preamble", "profile", "closing"}, "You are a writing assistant.")
	output := buf.String()

	assert.Contains(t, output, "SYSTEM PROMPT")
	assert.Contains(t, output, "preamble, profile, closing")
	assert.Contains(t, output, "You are a writing assistant.")
}

func TestPrintDraft(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	cached := 3
	p.PrintDraft(&assistant.Draft{
		Kind:                  types.DraftCoverLetter,
		Content:               "Dear hiring manager,",
		Usage:                 &llm.Usage{InputTokens: 120, OutputTokens: 40, CachedTokens: &cached},
		JobDescriptionFetched: true,
	})
	output := buf.String()

	assert.Contains(t, output, "cover letter")
	assert.Contains(t, output, "120 in / 40 out (3 cached)")
	assert.Contains(t, output, "fetched from posting URL")
	assert.True(t, strings.HasSuffix(output, "Dear hiring manager,\n"))
}

func TestPrintDraft_NoUsage(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDraft(&assistant.Draft{Kind: types.DraftResume, Content: "x"})
	assert.Contains(t, buf.String(), "not reported")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary("IMPORTED", &bundle.Summary{Profile: true, Experiences: 4, Skills: 12})
	output := buf.String()

	assert.Contains(t, output, "IMPORTED")
	assert.Contains(t, output, "Profile:     yes")
	assert.Contains(t, output, "Experiences: 4")
	assert.Contains(t, output, "Skills:      12")

	buf.Reset()
	p.PrintSummary("EMPTY", nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TEST", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}
