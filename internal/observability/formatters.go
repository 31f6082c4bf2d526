// Package observability provides formatted output for the CLI commands.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/bundle"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintContext outputs a summary of an assembled AI context.
func (p *Printer) PrintContext(c *aicontext.Context) {
	if c == nil {
		return
	}

	var sb strings.Builder

	ed := c.EditingContext
	sb.WriteString(fmt.Sprintf("Collection: %s\n", ed.Collection))
	if ed.ItemID != "" {
		sb.WriteString(fmt.Sprintf("Item:       %s\n", ed.ItemID))
	}
	if ed.RoleType != "" {
		sb.WriteString(fmt.Sprintf("Role:       %s\n", ed.RoleType.Label()))
	}
	if ed.Field != "" {
		sb.WriteString(fmt.Sprintf("Field:      %s\n", ed.Field))
	}
	sb.WriteString("\n")

	ps := c.ProfileSummary
	sb.WriteString(fmt.Sprintf("Profile:    %s\n", ps.Name))
	if ps.Positioning != "" {
		sb.WriteString(fmt.Sprintf("Positioning: %s\n", ps.Positioning))
	}
	sb.WriteString(fmt.Sprintf("Item found: %t\n", c.CurrentItem != nil))
	sb.WriteString("\n")

	rc := c.RelatedContext
	writeList(&sb, "Skills", skillNames(rc.Skills))
	writeList(&sb, "Keywords", rc.Keywords)
	writeList(&sb, "Related experiences", experienceNames(rc.RelatedExperiences))
	writeList(&sb, "Featured experiences", experienceNames(rc.RecentExperiences))
	writeList(&sb, "Related projects", projectNames(rc.RelatedProjects))

	p.printBox("AI CONTEXT", sb.String())
}

// PrintPrompt outputs the list of included sections followed by the full prompt text.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPrompt(title string, sections []string, prompt string) {
	p.printBox(title, "Sections: "+strings.Join(sections, ", "))
	fmt.Fprintln(p.out, prompt)
	fmt.Fprintln(p.out)
}

// PrintDraft outputs a generated draft and its token usage.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDraft(d *assistant.Draft) {
	if d == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:   %s\n", d.Kind.Label()))
	sb.WriteString(fmt.Sprintf("Length: %d characters\n", utf8.RuneCountInString(d.Content)))
	if d.JobDescriptionFetched {
		sb.WriteString("Job description fetched from posting URL\n")
	}
	sb.WriteString(usageLine(d.Usage))

	p.printBox("DRAFT", sb.String())
	fmt.Fprintln(p.out, d.Content)
}

// PrintSummary outputs record counts for an import or export.
func (p *Printer) PrintSummary(title string, s *bundle.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	profile := "no"
	if s.Profile {
		profile = "yes"
	}
	sb.WriteString(fmt.Sprintf("Profile:     %s\n", profile))
	sb.WriteString(fmt.Sprintf("Experiences: %d\n", s.Experiences))
	sb.WriteString(fmt.Sprintf("Skills:      %d\n", s.Skills))
	sb.WriteString(fmt.Sprintf("Projects:    %d\n", s.Projects))
	sb.WriteString(fmt.Sprintf("Education:   %d\n", s.Education))
	sb.WriteString(fmt.Sprintf("Keywords:    %d\n", s.Keywords))

	p.printBox(title, sb.String())
}

func usageLine(u *llm.Usage) string {
	if u == nil {
		return "Tokens: not reported\n"
	}
	line := fmt.Sprintf("Tokens: %d in / %d out", u.InputTokens, u.OutputTokens)
	if u.CachedTokens != nil {
		line += fmt.Sprintf(" (%d cached)", *u.CachedTokens)
	}
	return line + "\n"
}

// writeList writes up to maxItemsToShow items under a label
func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		sb.WriteString(fmt.Sprintf("%s: none\n", label))
		return
	}
	sb.WriteString(fmt.Sprintf("%s (%d):\n", label, len(items)))
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

func skillNames(skills []db.Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return names
}

func experienceNames(exps []db.Experience) []string {
	names := make([]string, 0, len(exps))
	for _, e := range exps {
		names = append(names, fmt.Sprintf("%s at %s", e.Title, e.Company))
	}
	return names
}

func projectNames(projects []db.Project) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}
