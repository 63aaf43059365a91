package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/breakdown/internal/history"
)

// Lister reads recorded runs, newest first.
type Lister interface {
	List(ctx context.Context, limit int) ([]history.Entry, error)
}

type runsMsg struct {
	runs []history.Entry
	at   time.Time
}
type errMsg error
type tickMsg time.Time

// Model is the BubbleTea model for the run watch view.
type Model struct {
	source   Lister
	limit    int
	interval time.Duration

	width  int
	height int

	runs      []history.Entry
	seen      map[string]bool
	refreshed time.Time
	pulse     Pulse
	table     table.Model
	theme     Theme
	lastError string
}

// New creates a watch model polling source every interval.
func New(source Lister, limit int, interval time.Duration) Model {
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ST", Width: 2},
			{Title: "Time", Width: 8},
			{Title: "Via", Width: 4},
			{Title: "Profile", Width: 10},
			{Title: "Pair", Width: 18},
			{Title: "Template / Error", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{
		source:   source,
		limit:    limit,
		interval: interval,
		seen:     make(map[string]bool),
		table:    t,
		theme:    NewDefaultTheme(),
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, source Lister, limit int, interval time.Duration) error {
	_, err := tea.NewProgram(New(source, limit, interval), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		runs, err := m.source.List(context.Background(), m.limit)
		if err != nil {
			return errMsg(err)
		}
		return runsMsg{runs: runs, at: time.Now()}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tickMsg:
		m.pulse.Decay(time.Time(msg))
		return m, tea.Batch(m.fetch(), m.tick())

	case runsMsg:
		initial := len(m.seen) == 0
		fresh := false
		for _, r := range msg.runs {
			if !m.seen[r.ID] {
				fresh = !initial
				m.seen[r.ID] = true
			}
		}
		if fresh {
			m.pulse.OnNewRuns(msg.at)
		}
		m.runs = msg.runs
		m.refreshed = msg.at
		m.lastError = ""
		m.table.SetRows(rows(msg.runs))
		return m, nil

	case errMsg:
		m.lastError = msg.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading runs..."
	}

	parts := []string{
		renderHeader(summarize(m.runs), m.pulse, m.refreshed, m.theme, m.width),
		m.table.View(),
	}
	if detail := m.selectedDetail(); detail != "" {
		parts = append(parts, detail)
	}
	if m.lastError != "" {
		parts = append(parts, m.theme.StatusFailed.Render(fmt.Sprintf(" ⚠ %s", m.lastError)))
	}
	parts = append(parts, m.theme.Dim.Render(" [q] Quit • [r] Refresh • [↑/↓] Select"))

	return lipgloss.NewStyle().Margin(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// selectedDetail describes the highlighted run.
func (m Model) selectedDetail() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return ""
	}
	r := m.runs[i]
	if r.Failed() {
		return m.theme.StatusFailed.Render(fmt.Sprintf(" %s [%s] %s", r.Stage, r.ErrorKind, r.ErrorMessage))
	}
	line := fmt.Sprintf(" %s  source %s  digest %s", r.ID, r.Source, r.Digest)
	if r.FallbackUsed {
		line += m.theme.Highlight.Render("  adaptation " + r.Adaptation + " fell back")
	}
	return line
}

func rows(runs []history.Entry) []table.Row {
	out := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		status, last := "✓", r.Template
		switch {
		case r.Failed():
			status, last = "✗", r.ErrorKind
		case r.FallbackUsed:
			status = "↩"
		}
		out = append(out, table.Row{
			status,
			r.CreatedAt.Local().Format("15:04:05"),
			string(r.Surface),
			r.Profile,
			r.Directive + "/" + r.Layer,
			last,
		})
	}
	return out
}
