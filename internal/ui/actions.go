package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/social"
)

// handleAction dispatches the keys that act on the selected row.
func (m Model) handleAction(msg tea.KeyMsg, s screen) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		return m.open(s)
	case key.Matches(msg, m.keys.Tab):
		return m.cycleFilter(s)
	case key.Matches(msg, m.keys.Like):
		return m, m.like(s)
	case key.Matches(msg, m.keys.Follow):
		return m, m.follow(s)
	case key.Matches(msg, m.keys.Accept):
		return m, m.respond(s, true)
	case key.Matches(msg, m.keys.Reject):
		return m, m.respond(s, false)
	case key.Matches(msg, m.keys.Compose):
		return m.startCompose(s)
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit(s)
	case key.Matches(msg, m.keys.Delete):
		return m.askDelete(s)
	}
	return m, nil
}

// open drills from a movie into its reviews and from a review into its
// comments.
func (m Model) open(s screen) (tea.Model, tea.Cmd) {
	switch s := s.(type) {
	case *moviesScreen:
		mv, ok := s.Current()
		if !ok {
			return m, nil
		}
		vm := social.NewMovieReviews(m.backend, mv.ID, m.viewOpts)
		return m, m.push(newReviewsScreen(mv.Title, vm))
	case *reviewsScreen:
		r, ok := s.Current()
		if !ok {
			return m, nil
		}
		title := "Comments on " + r.Username + "'s review"
		if r.MovieTitle != "" {
			title += " of " + r.MovieTitle
		}
		vm := social.NewComments(m.backend, r.ID, m.viewOpts)
		return m, m.push(newCommentsScreen(title, vm))
	}
	return m, nil
}

// cycleFilter steps the media filter on movies and the relationship tab on
// connections.
func (m Model) cycleFilter(s screen) (tea.Model, tea.Cmd) {
	switch s := s.(type) {
	case *moviesScreen:
		s.MoveTo(0)
		ctx := m.screenCtx(s)
		return m, func() tea.Msg {
			s.vm.CycleMedia(ctx)
			return loadedMsg{}
		}
	case *connectionsScreen:
		m.connIdx = (m.connIdx + 1) % len(social.ConnectionTypes)
		m.close(s)
		next := m.connectionScreen(social.ConnectionTypes[m.connIdx])
		m.stacks[rootConnections] = []screen{next}
		return m, m.ensureLoaded(next)
	}
	return m, nil
}

func (m Model) like(s screen) tea.Cmd {
	switch s := s.(type) {
	case *reviewsScreen:
		r, ok := s.Current()
		if !ok {
			return nil
		}
		return opCmd(m.screenCtx(s), func(ctx context.Context) (string, error) {
			liked, err := s.vm.ToggleLike(ctx, r.ID)
			return likeText(liked, "review"), err
		})
	case *commentsScreen:
		c, ok := s.Current()
		if !ok {
			return nil
		}
		return opCmd(m.screenCtx(s), func(ctx context.Context) (string, error) {
			liked, err := s.vm.ToggleLike(ctx, c.ID)
			return likeText(liked, "comment"), err
		})
	}
	return nil
}

func likeText(liked bool, what string) string {
	if liked {
		return "Liked " + what
	}
	return "Unliked " + what
}

func (m Model) follow(s screen) tea.Cmd {
	cs, ok := s.(*connectionsScreen)
	if !ok {
		return nil
	}
	c, ok := cs.Current()
	if !ok {
		return nil
	}
	return opCmd(m.screenCtx(cs), func(ctx context.Context) (string, error) {
		following, err := cs.vm.ToggleFollow(ctx, c.ID)
		if following {
			return "Following @" + c.Username, err
		}
		return "Unfollowed @" + c.Username, err
	})
}

// respond accepts or rejects the selected pending request.
func (m Model) respond(s screen, accept bool) tea.Cmd {
	cs, ok := s.(*connectionsScreen)
	if !ok || cs.vm.Type() != api.ConnectionPending {
		return nil
	}
	c, ok := cs.Current()
	if !ok {
		return nil
	}
	return opCmd(m.screenCtx(cs), func(ctx context.Context) (string, error) {
		if accept {
			_, err := cs.vm.Accept(ctx, c.ID)
			return "Accepted @" + c.Username, err
		}
		_, err := cs.vm.Reject(ctx, c.ID)
		return "Rejected @" + c.Username, err
	})
}

func (m Model) startCompose(s screen) (tea.Model, tea.Cmd) {
	switch s := s.(type) {
	case *reviewsScreen:
		if s.vm.MovieID() <= 0 {
			m.flash = flash{err: apperr.Validation("Open a movie to write a review"), at: time.Now()}
			return m, nil
		}
		vm := s.vm
		m.compose = newReviewComposer("Review "+s.Title(), 0, "", func(ctx context.Context, rating int, content string) (string, error) {
			_, err := vm.Create(ctx, rating, content)
			return "Review posted", err
		})
		m.compose.owner = s
		return m, m.compose.focusCmd()
	case *commentsScreen:
		vm := s.vm
		m.compose = newCommentComposer("New comment", "", func(ctx context.Context, _ int, content string) (string, error) {
			_, err := vm.Create(ctx, content)
			return "Comment posted", err
		})
		m.compose.owner = s
		return m, m.compose.focusCmd()
	}
	return m, nil
}

func (m Model) startEdit(s screen) (tea.Model, tea.Cmd) {
	switch s := s.(type) {
	case *reviewsScreen:
		r, ok := s.Current()
		if !ok {
			return m, nil
		}
		if !m.isOwn(r.UserID) {
			m.flash = flash{err: apperr.Validation("You can only edit your own reviews"), at: time.Now()}
			return m, nil
		}
		vm := s.vm
		m.compose = newReviewComposer("Edit review", r.Rating, r.Content, func(ctx context.Context, rating int, content string) (string, error) {
			_, err := vm.Update(ctx, r.ID, rating, content)
			return "Review saved", err
		})
		m.compose.owner = s
		return m, m.compose.focusCmd()
	case *commentsScreen:
		c, ok := s.Current()
		if !ok {
			return m, nil
		}
		if !m.isOwn(c.UserID) {
			m.flash = flash{err: apperr.Validation("You can only edit your own comments"), at: time.Now()}
			return m, nil
		}
		vm := s.vm
		m.compose = newCommentComposer("Edit comment", c.Content, func(ctx context.Context, _ int, content string) (string, error) {
			_, err := vm.Update(ctx, c.ID, content)
			return "Comment saved", err
		})
		m.compose.owner = s
		return m, m.compose.focusCmd()
	}
	return m, nil
}

func (m Model) askDelete(s screen) (tea.Model, tea.Cmd) {
	var (
		what, owner string
		del         func(context.Context) error
	)
	switch s := s.(type) {
	case *reviewsScreen:
		r, ok := s.Current()
		if !ok {
			return m, nil
		}
		what, owner = "review", r.UserID
		del = func(ctx context.Context) error { return s.vm.Delete(ctx, r.ID) }
	case *commentsScreen:
		c, ok := s.Current()
		if !ok {
			return m, nil
		}
		what, owner = "comment", c.UserID
		del = func(ctx context.Context) error { return s.vm.Delete(ctx, c.ID) }
	default:
		return m, nil
	}
	if !m.isOwn(owner) {
		m.flash = flash{err: apperr.Validation(fmt.Sprintf("You can only delete your own %ss", what)), at: time.Now()}
		return m, nil
	}
	m.confirm = &confirmPrompt{
		prompt: fmt.Sprintf("Delete this %s?", what),
		action: opCmd(m.screenCtx(s), func(ctx context.Context) (string, error) {
			return "Deleted " + what, del(ctx)
		}),
	}
	return m, nil
}

// startBioEdit opens the profile bio editor prefilled from the cache.
func (m Model) startBioEdit() (tea.Model, tea.Cmd) {
	if m.profile == nil {
		return m, nil
	}
	p, err := m.profile.GetSync()
	if err != nil {
		m.flash = flash{err: err, at: time.Now()}
		return m, nil
	}
	cache := m.profile
	m.compose = newBioComposer(p.Bio, func(ctx context.Context, _ int, bio string) (string, error) {
		_, err := cache.Update(ctx, api.ProfileUpdate{Bio: &bio})
		return "Bio updated", err
	})
	return m, m.compose.focusCmd()
}
