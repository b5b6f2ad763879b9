package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Refresh    key.Binding
	EditBio    key.Binding

	// View switching
	ViewMovies      key.Binding
	ViewConnections key.Binding
	ViewMyReviews   key.Binding
	ViewLog         key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Enter  key.Binding
	Tab    key.Binding

	// Actions
	Like    key.Binding
	Compose key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Follow  key.Binding
	Accept  key.Binding
	Reject  key.Binding

	// Prompts
	Confirm key.Binding
	Cancel  key.Binding
	Submit  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		EditBio: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Edit bio"),
		),

		ViewMovies: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Movies"),
		),
		ViewConnections: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Connections"),
		),
		ViewMyReviews: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "My reviews"),
		),
		ViewLog: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Log"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle filter"),
		),

		Like: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Like/unlike"),
		),
		Compose: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Write"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit own"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete own"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Follow/unfollow"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Accept request"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Reject request"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s", "enter"),
			key.WithHelp("enter", "Submit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Escape, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewMovies, k.ViewConnections, k.ViewMyReviews, k.ViewLog},
		{k.Up, k.Down, k.Top, k.Bottom, k.Enter, k.Escape},
		{k.Like, k.Compose, k.Edit, k.Delete},
		{k.Follow, k.Accept, k.Reject, k.Tab},
		{k.Refresh, k.EditBio, k.CycleTheme, k.Help, k.Quit},
	}
}
