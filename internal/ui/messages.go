package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cinevibe/cinevibe/internal/logtail"
)

// Messages

type tickMsg time.Time

// loadedMsg reports that a list load returned; the new state is read from
// the view-model on render.
type loadedMsg struct{}

// opDoneMsg carries the outcome of a write started from a key press.
type opDoneMsg struct {
	text string
	err  error
}

type profileMsg struct {
	err error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

// changedMsg reports that a watched list, operation or the profile changed.
type changedMsg struct{}

// waitForChange blocks until a watcher signals on changes.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadCmd(ctx context.Context, s screen, refresh bool) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		s.Load(ctx, refresh)
		return loadedMsg{}
	}
}

func opCmd(ctx context.Context, fn func(context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := fn(ctx)
		return opDoneMsg{text: text, err: err}
	}
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}
