package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/auth"
	"github.com/cinevibe/cinevibe/internal/prefs"
	"github.com/cinevibe/cinevibe/internal/profile"
	"github.com/cinevibe/cinevibe/internal/social"
	"github.com/cinevibe/cinevibe/internal/state"
)

const me = "user-me"

// backend is a small in-memory Backend. Lists fit in one page.
type backend struct {
	mu          sync.Mutex
	movies      []api.Movie
	reviews     []api.Review
	comments    []api.Comment
	connections []api.Connection
	calls       []string

	// reviewsHeld, when set, parks review fetches until it closes or the
	// request is cancelled; each parked fetch reports how it ended.
	reviewsHeld  chan struct{}
	reviewsEnded chan error
}

func newBackend() *backend {
	return &backend{
		movies: []api.Movie{
			{ID: 1, Title: "Heat", MediaType: api.MediaMovie, Year: 1995},
			{ID: 2, Title: "Severance", MediaType: api.MediaTV, Year: 2022},
		},
		reviews: []api.Review{
			{ID: 10, MovieID: 1, UserID: "user-other", Username: "other", Rating: 8, Content: "Great", LikeCount: 3},
			{ID: 11, MovieID: 1, UserID: me, Username: "me", Rating: 6, Content: "Fine"},
		},
		comments: []api.Comment{
			{ID: 100, ReviewID: 10, UserID: me, Username: "me", Content: "Agreed"},
		},
		connections: []api.Connection{
			{ID: "c1", UserID: "u1", Username: "ann", Type: api.ConnectionFollowers, Status: api.StatusAccepted},
			{ID: "c2", UserID: "u2", Username: "bob", Type: api.ConnectionPending, Status: api.StatusPending},
		},
	}
}

func (b *backend) record(call string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
}

func (b *backend) called(call string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == call {
			return true
		}
	}
	return false
}

func onePage[T any](items []T) api.Page[T] {
	return api.Page[T]{Items: append([]T(nil), items...), PageSize: len(items), Total: int64(len(items)), IsLast: true}
}

func (b *backend) FetchMovies(ctx context.Context, media api.MediaType, page, size int) (api.Page[api.Movie], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []api.Movie
	for _, m := range b.movies {
		if media == "" || m.MediaType == media {
			out = append(out, m)
		}
	}
	return onePage(out), nil
}

func (b *backend) FetchMovieReviews(ctx context.Context, movieID int64, page, size int) (api.Page[api.Review], error) {
	if b.reviewsHeld != nil {
		select {
		case <-ctx.Done():
			b.reviewsEnded <- ctx.Err()
			return api.Page[api.Review]{}, ctx.Err()
		case <-b.reviewsHeld:
			b.reviewsEnded <- nil
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []api.Review
	for _, r := range b.reviews {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	return onePage(out), nil
}

func (b *backend) FetchUserReviews(ctx context.Context, userID string, page, size int) (api.Page[api.Review], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []api.Review
	for _, r := range b.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return onePage(out), nil
}

func (b *backend) CreateReview(ctx context.Context, movieID int64, in api.ReviewInput) (api.Review, error) {
	b.record("create-review")
	b.mu.Lock()
	defer b.mu.Unlock()
	r := api.Review{ID: 50, MovieID: movieID, UserID: me, Username: "me", Rating: in.Rating, Content: in.Content}
	b.reviews = append(b.reviews, r)
	return r, nil
}

func (b *backend) UpdateReview(ctx context.Context, id int64, in api.ReviewInput) (api.Review, error) {
	b.record("update-review")
	return api.Review{ID: id, Rating: in.Rating, Content: in.Content}, nil
}

func (b *backend) DeleteReview(ctx context.Context, id int64) error {
	b.record("delete-review")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.reviews {
		if r.ID == id {
			b.reviews = append(b.reviews[:i], b.reviews[i+1:]...)
			break
		}
	}
	return nil
}

func (b *backend) LikeReview(ctx context.Context, id int64) (api.LikeState, error) {
	b.record("like-review")
	return api.LikeState{LikeCount: 4, UserHasLiked: true}, nil
}

func (b *backend) UnlikeReview(ctx context.Context, id int64) (api.LikeState, error) {
	b.record("unlike-review")
	return api.LikeState{LikeCount: 3}, nil
}

func (b *backend) FetchComments(ctx context.Context, reviewID int64, page, size int) (api.Page[api.Comment], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []api.Comment
	for _, c := range b.comments {
		if c.ReviewID == reviewID {
			out = append(out, c)
		}
	}
	return onePage(out), nil
}

func (b *backend) CreateComment(ctx context.Context, reviewID int64, in api.CommentInput) (api.Comment, error) {
	b.record("create-comment")
	return api.Comment{ID: 101, ReviewID: reviewID, Content: in.Content}, nil
}

func (b *backend) UpdateComment(ctx context.Context, id int64, in api.CommentInput) (api.Comment, error) {
	b.record("update-comment")
	return api.Comment{ID: id, Content: in.Content}, nil
}

func (b *backend) DeleteComment(ctx context.Context, id int64) error {
	b.record("delete-comment")
	return nil
}

func (b *backend) LikeComment(ctx context.Context, id int64) (api.LikeState, error) {
	return api.LikeState{LikeCount: 1, UserHasLiked: true}, nil
}

func (b *backend) UnlikeComment(ctx context.Context, id int64) (api.LikeState, error) {
	return api.LikeState{}, nil
}

func (b *backend) FetchConnections(ctx context.Context, userID string, kind api.ConnectionType, page, size int) (api.Page[api.Connection], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []api.Connection
	for _, c := range b.connections {
		if c.Type == kind {
			out = append(out, c)
		}
	}
	return onePage(out), nil
}

func (b *backend) Follow(ctx context.Context, userID string) (api.FollowState, error) {
	b.record("follow")
	return api.FollowState{IsFollowing: true, FollowerCount: 1}, nil
}

func (b *backend) Unfollow(ctx context.Context, userID string) (api.FollowState, error) {
	b.record("unfollow")
	return api.FollowState{}, nil
}

func (b *backend) AcceptConnection(ctx context.Context, id string) (api.Connection, error) {
	b.record("accept")
	return api.Connection{ID: id, Status: api.StatusAccepted}, nil
}

func (b *backend) RejectConnection(ctx context.Context, id string) (api.Connection, error) {
	b.record("reject")
	return api.Connection{ID: id, Status: api.StatusRejected}, nil
}

func newTestModel(t *testing.T, b *backend) Model {
	t.Helper()
	m := New(Options{
		Backend:     b,
		Identity:    auth.Identity{UserID: me},
		ViewOptions: social.Options{ResetDelay: -1},
		PrefsPath:   filepath.Join(t.TempDir(), "prefs.toml"),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(Model)
	run(t, m.ensureLoaded(m.current()))
	return m
}

// run executes cmd and any batch it expands to. Commands that do not return
// promptly (ticks, cursor blinks) are dropped.
func run(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(200 * time.Millisecond):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = next.(Model)
		for _, msg := range run(t, cmd) {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestModel_StartsOnMovies(t *testing.T) {
	m := newTestModel(t, newBackend())
	s, ok := m.current().(*moviesScreen)
	if !ok {
		t.Fatalf("current = %T, want *moviesScreen", m.current())
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if cmd := m.ensureLoaded(s); cmd != nil {
		t.Fatalf("second ensureLoaded returned a command")
	}
}

func TestModel_StartView(t *testing.T) {
	m := New(Options{Backend: newBackend(), StartView: prefs.ViewConnections})
	if m.root != rootConnections {
		t.Fatalf("root = %v, want connections", m.root)
	}
}

func TestModel_EnterOpensReviewsAndEscPops(t *testing.T) {
	m := newTestModel(t, newBackend())
	m = press(t, m, enter)
	rs, ok := m.current().(*reviewsScreen)
	if !ok {
		t.Fatalf("current = %T, want *reviewsScreen", m.current())
	}
	if rs.Title() != "Heat" || rs.Len() != 2 {
		t.Fatalf("reviews screen = %q with %d rows, want Heat with 2", rs.Title(), rs.Len())
	}

	m = press(t, m, enter)
	cs, ok := m.current().(*commentsScreen)
	if !ok {
		t.Fatalf("current = %T, want *commentsScreen", m.current())
	}
	if cs.Len() != 1 {
		t.Fatalf("comments = %d, want 1", cs.Len())
	}

	m = press(t, m, esc, esc)
	if _, ok := m.current().(*moviesScreen); !ok {
		t.Fatalf("after esc current = %T, want *moviesScreen", m.current())
	}
	m = press(t, m, esc)
	if len(m.stacks[rootMovies]) != 1 {
		t.Fatalf("esc at root popped the stack")
	}
}

func TestModel_EscCancelsScreenLoad(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b)
	b.reviewsHeld = make(chan struct{})
	b.reviewsEnded = make(chan error, 1)
	defer close(b.reviewsHeld)

	next, cmd := m.Update(enter)
	m = next.(Model)
	rs, ok := m.current().(*reviewsScreen)
	if !ok || cmd == nil {
		t.Fatalf("enter did not open a loading reviews screen")
	}
	go cmd()

	m = press(t, m, esc)
	select {
	case err := <-b.reviewsEnded:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("review fetch ended with %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("review fetch still running after esc")
	}
	if _, ok := m.current().(*moviesScreen); !ok {
		t.Fatalf("current = %T, want *moviesScreen", m.current())
	}
	for i := 0; i < 100 && rs.Phase() == state.PhaseLoading; i++ {
		time.Sleep(time.Millisecond)
	}
	if phase := rs.Phase(); phase != state.PhaseInitial {
		t.Fatalf("closed screen phase = %v, want initial", phase)
	}
}

func TestModel_ConnectionsTabCancelsReplacedScreen(t *testing.T) {
	m := newTestModel(t, newBackend())
	m = press(t, m, runes("2"))
	old := m.current()
	ctx := m.screenCtx(old)

	m = press(t, m, tab)
	if m.current() == old {
		t.Fatalf("tab did not replace the connections screen")
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatalf("replaced screen context err = %v, want context.Canceled", ctx.Err())
	}
	if m.screenCtx(m.current()).Err() != nil {
		t.Fatalf("new screen context already done")
	}
}

func TestModel_LikeReview(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b)
	m = press(t, m, enter, runes("L"))

	rs := m.current().(*reviewsScreen)
	r, _ := rs.Current()
	if !r.UserHasLiked || r.LikeCount != 4 {
		t.Fatalf("review = liked %v count %d, want liked with 4", r.UserHasLiked, r.LikeCount)
	}
	if m.flash.text != "Liked review" || m.flash.err != nil {
		t.Fatalf("flash = %+v, want Liked review", m.flash)
	}
}

func TestModel_EditRequiresOwnership(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b)
	m = press(t, m, enter, runes("e"))
	if m.compose != nil {
		t.Fatalf("compose opened for someone else's review")
	}
	if m.flash.err == nil {
		t.Fatalf("expected an ownership error")
	}

	m = press(t, m, down, runes("e"))
	if m.compose == nil {
		t.Fatalf("compose not opened for own review")
	}
	if got := m.compose.content.Value(); got != "Fine" {
		t.Fatalf("compose prefilled with %q, want Fine", got)
	}
}

func TestModel_ComposeValidatesBeforeSubmitting(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b)
	m = press(t, m, enter, runes("c"))
	if m.compose == nil {
		t.Fatalf("compose not opened")
	}

	m = press(t, m, enter)
	if m.compose == nil || m.compose.err == "" {
		t.Fatalf("empty review submitted")
	}
	if b.called("create-review") {
		t.Fatalf("create called for invalid input")
	}

	m = press(t, m, runes("Loved it"), tab, runes("9"), enter)
	if m.compose != nil {
		t.Fatalf("compose still open: %q", m.compose.err)
	}
	if !b.called("create-review") {
		t.Fatalf("create not called")
	}
	if m.flash.text != "Review posted" {
		t.Fatalf("flash = %+v, want Review posted", m.flash)
	}
	if got := m.current().Len(); got != 3 {
		t.Fatalf("reviews after create = %d, want 3", got)
	}
}

func TestModel_ComposeCapturesKeysUntilEsc(t *testing.T) {
	m := newTestModel(t, newBackend())
	m = press(t, m, enter, runes("c"), runes("q"))
	if m.compose == nil {
		t.Fatalf("q closed compose")
	}
	if got := m.compose.content.Value(); got != "q" {
		t.Fatalf("content = %q, want q", got)
	}
	m = press(t, m, esc)
	if m.compose != nil {
		t.Fatalf("esc did not close compose")
	}
}

func TestModel_DeleteAsksFirst(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b)
	m = press(t, m, enter, down, runes("d"))
	if m.confirm == nil {
		t.Fatalf("delete did not ask for confirmation")
	}
	m = press(t, m, runes("n"))
	if m.confirm != nil || b.called("delete-review") {
		t.Fatalf("cancelled delete still ran")
	}

	m = press(t, m, runes("d"), runes("y"))
	if !b.called("delete-review") {
		t.Fatalf("confirmed delete did not run")
	}
	if got := m.current().Len(); got != 1 {
		t.Fatalf("reviews after delete = %d, want 1", got)
	}
}

func TestModel_ConnectionsTabCycles(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b)
	m = press(t, m, runes("2"))
	cs := m.current().(*connectionsScreen)
	if cs.vm.Type() != api.ConnectionFollowers || cs.Len() != 1 {
		t.Fatalf("connections = %s with %d rows, want followers with 1", cs.vm.Type(), cs.Len())
	}

	m = press(t, m, tab, tab)
	cs = m.current().(*connectionsScreen)
	if cs.vm.Type() != api.ConnectionPending {
		t.Fatalf("type = %s, want pending", cs.vm.Type())
	}

	m = press(t, m, runes("a"))
	if !b.called("accept") {
		t.Fatalf("accept not called")
	}
	if m.flash.text != "Accepted @bob" {
		t.Fatalf("flash = %+v", m.flash)
	}
}

func TestModel_AcceptIgnoredOutsidePending(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b)
	m = press(t, m, runes("2"), runes("a"))
	if b.called("accept") {
		t.Fatalf("accept ran on the followers tab")
	}
}

func TestModel_CycleThemePersists(t *testing.T) {
	m := newTestModel(t, newBackend())
	m = press(t, m, runes("T"))
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %s, want Slate", m.theme.Name)
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("saved theme = %q, want Slate", p.Theme)
	}
}

func TestModel_ViewRendersEveryRoot(t *testing.T) {
	m := newTestModel(t, newBackend())
	for _, k := range []string{"1", "2", "3", "4"} {
		m = press(t, m, runes(k))
		out := m.View()
		if !strings.Contains(out, "cinevibe") {
			t.Fatalf("view %s missing header:\n%s", k, out)
		}
	}
	m = press(t, m, runes("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
}

type profiles struct {
	mu sync.Mutex
	p  api.UserProfile
}

func (f *profiles) CurrentUser(ctx context.Context) (api.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.p, nil
}

func (f *profiles) UpdateProfile(ctx context.Context, u api.ProfileUpdate) (api.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.Bio != nil {
		f.p.Bio = *u.Bio
	}
	return f.p, nil
}

func TestModel_EditBioUpdatesProfile(t *testing.T) {
	svc := &profiles{p: api.UserProfile{ID: me, Username: "me", Bio: "old"}}
	cache := profile.New(svc)
	m := New(Options{
		Backend:   newBackend(),
		Profile:   cache,
		Identity:  auth.Identity{UserID: me},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(Model)
	run(t, m.fetchProfile(false))

	m = press(t, m, runes("p"))
	if m.compose == nil {
		t.Fatalf("bio editor not opened")
	}
	if got := m.compose.content.Value(); got != "old" {
		t.Fatalf("bio prefilled with %q, want old", got)
	}
	m = press(t, m, runes(" and new"), enter)
	if m.flash.err != nil {
		t.Fatalf("flash error = %v", m.flash.err)
	}
	p, err := cache.GetSync()
	if err != nil {
		t.Fatalf("GetSync: %v", err)
	}
	if p.Bio != "old and new" {
		t.Fatalf("Bio = %q, want %q", p.Bio, "old and new")
	}
	if !strings.Contains(m.View(), "@me") {
		t.Fatalf("header does not show the profile")
	}
}

func drain(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestModel_WatchesOpenScreensOnly(t *testing.T) {
	m := newTestModel(t, newBackend())
	m = press(t, m, enter)
	rs := m.current()

	drain(m.changes)
	rs.Load(context.Background(), true)
	select {
	case <-m.changes:
	default:
		t.Fatalf("reload of the open screen did not signal a change")
	}

	m = press(t, m, esc)
	drain(m.changes)
	rs.Load(context.Background(), true)
	select {
	case <-m.changes:
		t.Fatalf("closed screen still signals changes")
	default:
	}
}

func TestModel_ProfileChangesSignal(t *testing.T) {
	cache := profile.New(&profiles{p: api.UserProfile{ID: me, Username: "me"}})
	m := New(Options{Backend: newBackend(), Profile: cache})
	drain(m.changes)

	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get: %v", err)
	}
	msgs := run(t, waitForChange(m.changes))
	if len(msgs) != 1 {
		t.Fatalf("waitForChange returned %d messages, want 1", len(msgs))
	}
	if _, ok := msgs[0].(changedMsg); !ok {
		t.Fatalf("msg = %T, want changedMsg", msgs[0])
	}
}
