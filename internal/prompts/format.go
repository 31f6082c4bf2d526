package prompts

import (
	"strings"

	"github.com/jonathan/career-admin/internal/db"
)

const notAvailable = "N/A"

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// joinOrNA comma-joins items, rendering N/A for an empty list
func joinOrNA(items []string) string {
	if len(items) == 0 {
		return notAvailable
	}
	return strings.Join(items, ", ")
}

// formatDate renders YYYY-MM-DD, or N/A when missing
func formatDate(d *db.Date) string {
	if d == nil || d.IsZero() {
		return notAvailable
	}
	return d.String()
}

// formatRange renders "start - end", with Present for a missing end date
func formatRange(start, end *db.Date) string {
	endStr := "Present"
	if end != nil && !end.IsZero() {
		endStr = end.String()
	}
	return formatDate(start) + " - " + endStr
}

// head returns the first n items in source order
func head[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// line writes "label: value" when value is non-empty
func line(sb *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
