package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "markdown code block",
			input:    "```markdown\n# Jane Doe\nSenior Engineer\n```",
			expected: "# Jane Doe\nSenior Engineer",
		},
		{
			name:     "generic code block",
			input:    "```\nDear Hiring Manager,\n```",
			expected: "Dear Hiring Manager,",
		},
		{
			name:     "plain text",
			input:    "  Dear Hiring Manager,\n\nI am writing...  ",
			expected: "Dear Hiring Manager,\n\nI am writing...",
		},
		{
			name:     "inner fences untouched",
			input:    "```go\nfmt.Println()\n```\nsome prose\n```go\nx := 1\n```",
			expected: "```go\nfmt.Println()\n```\nsome prose\n```go\nx := 1\n```",
		},
		{
			name:     "only fences",
			input:    "``````",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripCodeFences(tt.input))
		})
	}
}
