package prompts

import "strings"

// Section is one named block of a prompt. When decides inclusion;
// Render produces the text. An empty render is dropped like an excluded section.
type Section[T any] struct {
	Name   string
	When   func(T) bool
	Render func(T) string
}

// Builder renders an ordered list of sections, separated by blank lines
type Builder[T any] struct {
	sections []Section[T]
}

// NewBuilder returns a builder for the given sections, rendered in order
func NewBuilder[T any](sections ...Section[T]) *Builder[T] {
	return &Builder[T]{sections: sections}
}

// Build renders every included section
func (b *Builder[T]) Build(data T) string {
	parts := make([]string, 0, len(b.sections))
	for _, s := range b.sections {
		if !s.included(data) {
			continue
		}
		if text := strings.TrimSpace(s.Render(data)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Included returns the names of the sections Build would render for data, in order
func (b *Builder[T]) Included(data T) []string {
	names := []string{}
	for _, s := range b.sections {
		if s.included(data) && strings.TrimSpace(s.Render(data)) != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

func (s Section[T]) included(data T) bool {
	return s.When == nil || s.When(data)
}

// Static returns a section that always renders the same text
func Static[T any](name, text string) Section[T] {
	return Section[T]{Name: name, Render: func(T) string { return text }}
}
