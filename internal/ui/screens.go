package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/feed"
	"github.com/cinevibe/cinevibe/internal/operation"
	"github.com/cinevibe/cinevibe/internal/social"
	"github.com/cinevibe/cinevibe/internal/state"
)

// screen is one paged list the user can look at.
type screen interface {
	Title() string
	Len() int
	Selected() int
	Move(delta int)
	MoveTo(index int)
	Phase() state.Phase
	Err() error
	Cursor() feed.Cursor
	Load(ctx context.Context, refresh bool) bool
	Ops() *operation.Machine
	Rows(styles Styles, width, height int, now time.Time) []string
	EmptyText() string
	Watch(fn func()) func()
}

type lister[T any] interface {
	View() state.View[T]
	Cursor() feed.Cursor
	Load(ctx context.Context, refresh bool) bool
	Watch(fn func(state.View[T])) func()
}

// list adapts a view-model to screen. selected is only touched from
// Update; the view-model may change underneath from background loads.
type list[T any] struct {
	title    string
	empty    string
	src      lister[T]
	ops      *operation.Machine
	row      func(item T, styles Styles, width int, now time.Time) string
	selected int
}

func (l *list[T]) Title() string { return l.title }
func (l *list[T]) EmptyText() string { return l.empty }
func (l *list[T]) Cursor() feed.Cursor { return l.src.Cursor() }
func (l *list[T]) Load(ctx context.Context, refresh bool) bool { return l.src.Load(ctx, refresh) }
func (l *list[T]) Ops() *operation.Machine { return l.ops }
func (l *list[T]) Phase() state.Phase { return l.src.View().Phase }
func (l *list[T]) Err() error { return l.src.View().Err }
func (l *list[T]) Len() int { return len(l.src.View().Items) }

// Watch calls fn whenever the list or its operation state changes.
func (l *list[T]) Watch(fn func()) func() {
	stopList := l.src.Watch(func(state.View[T]) { fn() })
	if l.ops == nil {
		return stopList
	}
	stopOps := l.ops.Watch(func(operation.State) { fn() })
	return func() {
		stopList()
		stopOps()
	}
}

func (l *list[T]) Selected() int {
	l.clamp()
	return l.selected
}

func (l *list[T]) Move(delta int) { l.MoveTo(l.selected + delta) }

func (l *list[T]) MoveTo(index int) {
	l.selected = index
	l.clamp()
}

func (l *list[T]) clamp() {
	n := l.Len()
	if l.selected >= n {
		l.selected = n - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Current returns the selected item.
func (l *list[T]) Current() (T, bool) {
	items := l.src.View().Items
	l.clamp()
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[l.selected], true
}

// Rows renders the window of items around the selection that fits height.
func (l *list[T]) Rows(styles Styles, width, height int, now time.Time) []string {
	items := l.src.View().Items
	if len(items) == 0 || height <= 0 {
		return nil
	}
	l.clamp()
	start := 0
	if l.selected >= height {
		start = l.selected - height + 1
	}
	end := start + height
	if end > len(items) {
		end = len(items)
	}
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := padRight(l.row(items[i], styles, width-2, now), width-2)
		if i == l.selected {
			rows = append(rows, styles.Selected.Render("▌"+line))
		} else {
			rows = append(rows, " "+line)
		}
	}
	return rows
}

type moviesScreen struct {
	*list[api.Movie]
	vm *social.Movies
}

func newMoviesScreen(vm *social.Movies) *moviesScreen {
	return &moviesScreen{
		list: &list[api.Movie]{title: "Movies", empty: "No movies found", src: vm, row: movieRow},
		vm:   vm,
	}
}

func (s *moviesScreen) Title() string {
	if m := s.vm.Media(); m != "" {
		return "Movies · " + string(m)
	}
	return "Movies"
}

type reviewsScreen struct {
	*list[api.Review]
	vm *social.Reviews
}

func newReviewsScreen(title string, vm *social.Reviews) *reviewsScreen {
	return &reviewsScreen{
		list: &list[api.Review]{title: title, empty: "No reviews yet", src: vm, ops: vm.Operation(), row: reviewRow},
		vm:   vm,
	}
}

type commentsScreen struct {
	*list[api.Comment]
	vm *social.Comments
}

func newCommentsScreen(title string, vm *social.Comments) *commentsScreen {
	return &commentsScreen{
		list: &list[api.Comment]{title: title, empty: "No comments yet", src: vm, ops: vm.Operation(), row: commentRow},
		vm:   vm,
	}
}

type connectionsScreen struct {
	*list[api.Connection]
	vm *social.Connections
}

func newConnectionsScreen(vm *social.Connections) *connectionsScreen {
	return &connectionsScreen{
		list: &list[api.Connection]{
			title: "Connections · " + string(vm.Type()),
			empty: "Nobody here yet",
			src:   vm,
			ops:   vm.Operation(),
			row:   connectionRow,
		},
		vm: vm,
	}
}

func movieRow(m api.Movie, styles Styles, width int, now time.Time) string {
	year := ""
	if m.Year > 0 {
		year = fmt.Sprintf(" (%d)", m.Year)
	}
	meta := fmt.Sprintf("%.1f · %s", m.AverageRating, plural(m.ReviewCount, "review"))
	title := truncate(m.Title+year, width-len(meta)-8)
	return styles.StatusStyle(string(m.MediaType)).Render(strings.ToUpper(string(m.MediaType))) + " " +
		styles.Text.Render(padRight(title, width-len(meta)-8)) + " " + styles.MutedText.Render(meta)
}

func reviewRow(r api.Review, styles Styles, width int, now time.Time) string {
	heart := "♡"
	if r.UserHasLiked {
		heart = "♥"
	}
	who := r.Username
	if r.MovieTitle != "" {
		who = r.MovieTitle
	}
	meta := fmt.Sprintf("%s %d · %s", heart, r.LikeCount, plural(r.CommentCount, "comment"))
	if width >= LayoutWideWidth {
		meta += " · " + relativeTime(r.CreatedAt, now)
	}
	body := truncate(singleLine(r.Content), width-len([]rune(meta))-len([]rune(who))-16)
	return styles.WarningText.Render(stars(r.Rating)) + " " +
		styles.AccentText.Render(who) + " " +
		styles.Text.Render(body) + "  " +
		styles.MutedText.Render(meta)
}

func commentRow(c api.Comment, styles Styles, width int, now time.Time) string {
	heart := "♡"
	if c.UserHasLiked {
		heart = "♥"
	}
	meta := fmt.Sprintf("%s %d", heart, c.LikeCount)
	if width >= LayoutWideWidth {
		meta += " · " + relativeTime(c.CreatedAt, now)
	}
	body := truncate(singleLine(c.Content), width-len([]rune(meta))-len([]rune(c.Username))-6)
	return styles.AccentText.Render(c.Username) + " " +
		styles.Text.Render(body) + "  " +
		styles.MutedText.Render(meta)
}

func connectionRow(c api.Connection, styles Styles, width int, now time.Time) string {
	name := c.DisplayName
	if name == "" {
		name = c.Username
	}
	follow := ""
	if c.IsFollowing {
		follow = " · following"
	}
	meta := plural(c.FollowerCount, "follower") + follow
	return styles.StatusStyle(string(c.Status)).Render(string(c.Status)) + " " +
		styles.Text.Render(truncate(name, 32)) + " " +
		styles.MutedText.Render("@"+c.Username+" · "+meta)
}
