// Package watch implements the live run-history view behind
// `breakdown history --watch`.
package watch

import "github.com/charmbracelet/lipgloss"

// Theme centralizes all styling for the watch view.
type Theme struct {
	// Status colors
	StatusOK       lipgloss.Style
	StatusFallback lipgloss.Style
	StatusFailed   lipgloss.Style

	// UI elements
	Border    lipgloss.Style
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style

	// Indicators
	PulseActive   lipgloss.Style
	PulseInactive lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusFallback: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),

		PulseActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		PulseInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
	}
}
