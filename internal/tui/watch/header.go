package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/breakdown/internal/history"
)

// Summary counts the runs currently on screen.
type Summary struct {
	Total    int
	Failed   int
	Fallback int
}

func summarize(runs []history.Entry) Summary {
	s := Summary{Total: len(runs)}
	for _, r := range runs {
		if r.Failed() {
			s.Failed++
		} else if r.FallbackUsed {
			s.Fallback++
		}
	}
	return s
}

func renderHeader(sum Summary, pulse Pulse, refreshed time.Time, theme Theme, width int) string {
	innerWidth := width - 4

	clock := theme.Dim.Render(time.Now().Format("15:04:05"))
	title := theme.Title.Render("BREAKDOWN RUNS")
	pad := innerWidth - lipgloss.Width(title) - lipgloss.Width(clock) - 2
	if pad < 1 {
		pad = 1
	}
	titleLine := title + strings.Repeat(" ", pad) + clock

	statsLine := fmt.Sprintf(" %d runs  %s  %s",
		sum.Total,
		theme.StatusFailed.Render(fmt.Sprintf("%d failed", sum.Failed)),
		theme.StatusFallback.Render(fmt.Sprintf("%d fallback", sum.Fallback)),
	)

	lastRun := "never"
	if !pulse.LastRun().IsZero() {
		lastRun = fmt.Sprintf("%s ago", time.Since(pulse.LastRun()).Round(time.Second))
	}
	activityLine := fmt.Sprintf(" New run: %s %s", lastRun, pulse.Render(theme))
	if !refreshed.IsZero() {
		activityLine += theme.Dim.Render("  refreshed " + refreshed.Format("15:04:05"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine, activityLine)
	if innerWidth < 1 {
		return content
	}
	return theme.Border.Width(innerWidth).Render(content)
}
