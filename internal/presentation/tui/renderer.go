// Package tui holds the terminal presentation helpers of the CLI.
package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown renderer for generated articles.
// If glamour cannot be initialized the text is returned unchanged.
func NewRenderer(wordWrap int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if wordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wordWrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
