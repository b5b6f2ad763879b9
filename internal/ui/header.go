package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/operation"
	"github.com/cinevibe/cinevibe/internal/profile"
	"github.com/cinevibe/cinevibe/internal/state"
)

// flashDuration is how long a flash message stays on the status line.
const flashDuration = 4 * time.Second

// renderHeader renders the top bar: logo, signed-in user and view tabs.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	compact := m.width < LayoutCompactWidth
	sep := "  "

	parts := []string{styles.Logo.Render("cinevibe")}
	parts = append(parts, m.profileParts(styles, compact)...)

	var tabs []string
	for i, r := range rootOrder {
		label := fmt.Sprintf("%d %s", i+1, r.label())
		if r == m.root {
			tabs = append(tabs, styles.AccentText.Bold(true).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Render(label))
		}
	}
	left := strings.Join(parts, sep)
	right := strings.Join(tabs, " ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 2 {
		return styles.Header.Width(m.width).Render(left)
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) profileParts(styles Styles, compact bool) []string {
	if m.profile == nil {
		return nil
	}
	var parts []string
	p, err := m.profile.GetSync()
	switch {
	case err == nil:
		name := "@" + p.Username
		if p.DisplayName != "" && !compact {
			name = p.DisplayName + " " + styles.MutedText.Render(name)
		}
		parts = append(parts, styles.Text.Render(name))
		if !compact {
			parts = append(parts, styles.MutedText.Render(fmt.Sprintf("%s · %d following · %s",
				plural(p.FollowerCount, "follower"), p.FollowingCount, plural(p.ReviewCount, "review"))))
		}
	case errors.Is(err, profile.ErrNotLoaded):
		parts = append(parts, styles.WarningText.Render("Signing in..."))
	default:
		parts = append(parts, styles.DangerText.Render(apperr.UserMessage(err)))
	}
	if m.profile.Snapshot().IsOffline() {
		parts = append(parts, styles.DangerText.Render("● OFFLINE"))
	}
	return parts
}

// renderTitleBar shows where the user is and how much of the list is loaded.
func (m Model) renderTitleBar() string {
	styles := m.theme.Styles()
	if m.root == rootLog {
		left := styles.AccentText.Bold(true).Render("Log") + "  " +
			styles.MutedText.Render(truncateMiddle(m.logPath, 60))
		right := styles.MutedText.Render("level ≥ " + m.logs.levelLabel())
		if !m.logs.follow {
			right += styles.WarningText.Render("  paused")
		}
		return joinEnds(left, right, m.width)
	}

	stack := m.stacks[m.root]
	crumbs := make([]string, 0, len(stack))
	for i, s := range stack {
		title := truncate(s.Title(), 40)
		if i == len(stack)-1 {
			crumbs = append(crumbs, styles.AccentText.Bold(true).Render(title))
		} else {
			crumbs = append(crumbs, styles.MutedText.Render(title))
		}
	}
	left := strings.Join(crumbs, styles.FaintText.Render(" › "))

	s := m.current()
	if s == nil {
		return left
	}
	count := plural(int64(s.Len()), "item")
	if s.Cursor().HasMore && s.Len() > 0 {
		count += "+"
	}
	right := phaseBadge(styles, s.Phase()) + " " + styles.MutedText.Render(count)
	return joinEnds(left, right, m.width)
}

func phaseBadge(styles Styles, p state.Phase) string {
	switch p {
	case state.PhaseLoading, state.PhaseLoadingMore:
		return styles.StatusStyle("loading").Render("loading")
	case state.PhaseError:
		return styles.StatusStyle("error").Render("error")
	case state.PhaseSuccess:
		return styles.StatusStyle("success").Render("ready")
	default:
		return styles.StatusStyle("").Render("idle")
	}
}

// renderStatus shows, in order of precedence: a pending confirmation, an
// operation in flight, the latest flash, then the operation's outcome.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	line := ""

	var op operation.State
	if s := m.current(); s != nil && s.Ops() != nil {
		op = s.Ops().State()
	}

	switch {
	case m.confirm != nil:
		line = styles.WarningText.Bold(true).Render(m.confirm.prompt) + styles.MutedText.Render("  y confirm · any other key cancels")
	case op.IsBusy():
		line = m.spinner.View() + " " + styles.InfoText.Render(progressText(op.Kind))
	case m.flash.err != nil && m.now.Sub(m.flash.at) < flashDuration:
		line = styles.DangerText.Render("✗ " + userMessage(m.flash.err))
	case m.flash.text != "" && m.now.Sub(m.flash.at) < flashDuration:
		line = styles.SuccessText.Render("✓ " + m.flash.text)
	case op.Phase == operation.PhaseError:
		line = styles.DangerText.Render("✗ " + userMessage(op.Err))
	case op.Phase == operation.PhaseSuccess:
		line = styles.SuccessText.Render("✓ " + doneText(op.Kind))
	}
	return styles.Footer.Width(m.width).Render(line)
}

func progressText(k operation.Kind) string {
	switch k {
	case operation.KindCreate:
		return "Posting…"
	case operation.KindUpdate:
		return "Saving…"
	case operation.KindDelete:
		return "Deleting…"
	case operation.KindLike:
		return "Liking…"
	case operation.KindUnlike:
		return "Removing like…"
	case operation.KindFollow:
		return "Following…"
	case operation.KindUnfollow:
		return "Unfollowing…"
	case operation.KindAccept:
		return "Accepting request…"
	case operation.KindReject:
		return "Rejecting request…"
	default:
		return "Working…"
	}
}

func doneText(k operation.Kind) string {
	switch k {
	case operation.KindCreate:
		return "Posted"
	case operation.KindUpdate:
		return "Saved"
	case operation.KindDelete:
		return "Deleted"
	default:
		return "Done: " + k.String()
	}
}

// renderKeyHints shows the bindings that apply to the current screen.
func (m Model) renderKeyHints() string {
	m.help.Styles.ShortKey = m.theme.Styles().AccentText
	m.help.Styles.ShortDesc = m.theme.Styles().MutedText
	m.help.Styles.ShortSeparator = m.theme.Styles().FaintText
	return " " + m.help.ShortHelpView(m.contextKeys())
}

func (m Model) contextKeys() []key.Binding {
	k := m.keys
	if m.root == rootLog {
		tab := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "Level"))
		follow := key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "Follow"))
		return []key.Binding{tab, follow, k.Refresh, k.Help, k.Quit}
	}
	switch s := m.current().(type) {
	case *moviesScreen:
		return []key.Binding{k.Enter, k.Tab, k.Refresh, k.Help, k.Quit}
	case *reviewsScreen:
		keys := []key.Binding{k.Enter, k.Like}
		if s.vm.MovieID() > 0 {
			keys = append(keys, k.Compose)
		}
		return append(keys, k.Edit, k.Delete, k.Escape, k.Help)
	case *commentsScreen:
		return []key.Binding{k.Like, k.Compose, k.Edit, k.Delete, k.Escape, k.Help}
	case *connectionsScreen:
		keys := []key.Binding{k.Follow, k.Tab}
		if s.vm.Type() == api.ConnectionPending {
			keys = append(keys, k.Accept, k.Reject)
		}
		return append(keys, k.Refresh, k.Help, k.Quit)
	}
	return k.ShortHelp()
}

// joinEnds lays left and right out on one line of width.
func joinEnds(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 2 {
		return " " + left
	}
	return " " + left + strings.Repeat(" ", gap) + right
}
