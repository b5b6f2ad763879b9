package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cinevibe/cinevibe/internal/logtail"
)

var logLevels = []logtail.Level{
	logtail.LevelDebug,
	logtail.LevelInfo,
	logtail.LevelWarn,
	logtail.LevelError,
}

// logState holds the log view: the raw tail, the minimum level shown and
// whether the view sticks to the bottom as lines arrive.
type logState struct {
	viewport viewport.Model
	minLevel logtail.Level
	follow   bool
	lines    []string
	err      error
}

func newLogState() logState {
	return logState{
		viewport: viewport.New(80, 20),
		minLevel: logtail.LevelInfo,
		follow:   true,
	}
}

func (l *logState) resize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
}

func (l *logState) cycleLevel() {
	for i, lvl := range logLevels {
		if lvl == l.minLevel {
			l.minLevel = logLevels[(i+1)%len(logLevels)]
			return
		}
	}
	l.minLevel = logtail.LevelDebug
}

func (l *logState) levelLabel() string {
	return l.minLevel.String()
}

// render rebuilds the viewport content from the current tail.
func (l *logState) render(styles Styles) {
	if l.err != nil {
		l.viewport.SetContent(" " + styles.DangerText.Render("Cannot read log: "+l.err.Error()))
		return
	}
	if len(l.lines) == 0 {
		l.viewport.SetContent(" " + styles.MutedText.Render("No log output yet"))
		return
	}
	entries := logtail.Filter(l.lines, l.minLevel)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, formatEntry(e, styles))
	}
	l.viewport.SetContent(strings.Join(out, "\n"))
	if l.follow {
		l.viewport.GotoBottom()
	}
}

func (l *logState) view() string {
	return l.viewport.View()
}

func formatEntry(e logtail.Entry, styles Styles) string {
	if e.Level == logtail.LevelUnknown {
		return "  " + styles.FaintText.Render(e.Raw)
	}
	var b strings.Builder
	b.WriteString(styles.FaintText.Render(e.Time))
	b.WriteString(" ")
	b.WriteString(levelStyle(e.Level, styles).Render(padRight(e.Level.String(), 5)))
	b.WriteString(" ")
	if e.Logger != "" {
		b.WriteString(styles.AccentText.Render(e.Logger))
		b.WriteString(" ")
	}
	b.WriteString(styles.Text.Render(e.Message))
	if e.Fields != "" {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(e.Fields))
	}
	return b.String()
}

func levelStyle(level logtail.Level, styles Styles) lipgloss.Style {
	switch level {
	case logtail.LevelError:
		return styles.DangerText
	case logtail.LevelWarn:
		return styles.WarningText
	case logtail.LevelInfo:
		return styles.InfoText
	default:
		return styles.MutedText
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.logs.cycleLevel()
		m.logs.render(m.theme.Styles())
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logs.follow = true
		m.logs.viewport.GotoBottom()
		return m, readLogsCmd(m.logPath)
	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		m.logs.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	m.logs.follow = m.logs.viewport.AtBottom()
	return m, cmd
}
