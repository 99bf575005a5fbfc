package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Render formats markdown for a terminal. Style is a glamour standard style
// name such as "dark" or "notty", or "auto" to detect the terminal.
func Render(markdown, style string, width int) (string, error) {
	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}
