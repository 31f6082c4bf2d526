package llm

import "strings"

// StripCodeFences removes a markdown code fence wrapping the whole response.
// Models often wrap drafts in ```markdown ... ``` even when told not to.
// Fences inside the text are left alone.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	inner := strings.TrimPrefix(text, "```")
	inner = strings.TrimSuffix(inner, "```")

	// Skip a language identifier on the first line
	if idx := strings.Index(inner, "\n"); idx >= 0 {
		firstLine := inner[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			inner = inner[idx+1:]
		}
	}

	// An opening fence that closes early means the fences belong to the content
	if strings.Contains(inner, "```") {
		return text
	}
	return strings.TrimSpace(inner)
}
