// Package style centralizes terminal styling for breakdown's CLI output.
package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds every style the CLI prints with.
type Theme struct {
	// Status colors
	OK    lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style

	// UI elements
	Kind      lipgloss.Style
	Header    lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
}

// NewTheme returns the default theme rendered for w. Color is dropped
// automatically when w is not a terminal.
func NewTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)

	return Theme{
		OK:    r.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		Warn:  r.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		Error: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),

		Kind: r.NewStyle().Foreground(lipgloss.Color("#E06C75")),
		Header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Dim:       r.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: r.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
	}
}

// ErrorLine formats "Error [Kind] message".
func (t Theme) ErrorLine(kind, msg string) string {
	if kind == "" {
		return fmt.Sprintf("%s %s", t.Error.Render("Error"), msg)
	}
	return fmt.Sprintf("%s %s %s", t.Error.Render("Error"), t.Kind.Render("["+kind+"]"), msg)
}

// Detail formats an indented "key: value" line.
func (t Theme) Detail(key string, value any) string {
	return fmt.Sprintf("  %s %v", t.Dim.Render(key+":"), value)
}

// Notice formats an informational line, such as the fallback report.
func (t Theme) Notice(label, msg string) string {
	return fmt.Sprintf("%s %s", t.Highlight.Render(label), msg)
}
