package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/auth"
	"github.com/cinevibe/cinevibe/internal/prefs"
	"github.com/cinevibe/cinevibe/internal/profile"
	"github.com/cinevibe/cinevibe/internal/social"
	"github.com/cinevibe/cinevibe/internal/state"
)

// rootView is one of the top-level sections reachable with 1-4.
type rootView int

const (
	rootMovies rootView = iota
	rootConnections
	rootMyReviews
	rootLog
)

var rootOrder = []rootView{rootMovies, rootConnections, rootMyReviews, rootLog}

func (r rootView) label() string {
	switch r {
	case rootConnections:
		return "Connections"
	case rootMyReviews:
		return "My reviews"
	case rootLog:
		return "Log"
	default:
		return "Movies"
	}
}

func rootFor(startView string) rootView {
	switch startView {
	case prefs.ViewConnections:
		return rootConnections
	case prefs.ViewMyReviews:
		return rootMyReviews
	default:
		return rootMovies
	}
}

// Backend is every list and write endpoint the screens use.
type Backend interface {
	api.MovieReader
	api.ReviewService
	api.CommentService
	api.ConnectionService
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Backend     Backend
	Profile     *profile.Cache
	Identity    auth.Identity
	ViewOptions social.Options
	LogPath     string
	ThemeName   string
	StartView   string
	PrefsPath   string
	Logger      *zap.Logger
}

// flash is a short-lived status line message.
type flash struct {
	text string
	err  error
	at   time.Time
}

// confirmPrompt asks y/n before running action.
type confirmPrompt struct {
	prompt string
	action tea.Cmd
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	backend   Backend
	profile   *profile.Cache
	identity  auth.Identity
	viewOpts  social.Options
	logPath   string
	prefsPath string
	startView string
	logger    *zap.Logger

	// UI state
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	theme   Theme
	width   int
	height  int
	ready   bool
	now     time.Time

	// Screens. Each root keeps its own stack; enter pushes, esc pops.
	root        rootView
	stacks      map[rootView][]screen
	connIdx     int
	connections map[api.ConnectionType]*connectionsScreen
	started     map[screen]bool
	scopes      map[screen]scope
	changes     chan struct{}

	// Overlays and prompts
	showHelp bool
	compose  *composer
	confirm  *confirmPrompt
	flash    flash

	logs logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		backend:     opts.Backend,
		profile:     opts.Profile,
		identity:    opts.Identity,
		viewOpts:    opts.ViewOptions,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		startView:   opts.StartView,
		logger:      logger,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		theme:       GetTheme(themeName),
		now:         time.Now(),
		root:        rootFor(opts.StartView),
		connections: make(map[api.ConnectionType]*connectionsScreen),
		started:     make(map[screen]bool),
		scopes:      make(map[screen]scope),
		changes:     make(chan struct{}, 1),
		logs:        newLogState(),
	}
	m.stacks = map[rootView][]screen{
		rootMovies:      {newMoviesScreen(social.NewMovies(opts.Backend, opts.ViewOptions))},
		rootConnections: {m.connectionScreen(social.ConnectionTypes[0])},
		rootMyReviews:   {newReviewsScreen("My reviews", social.NewUserReviews(opts.Backend, opts.Identity.UserID, opts.ViewOptions))},
	}
	if opts.Profile != nil {
		opts.Profile.Watch(func(state.View[api.UserProfile]) { m.signal() })
	}
	return m
}

// signal wakes the pending waitForChange. It never blocks, so watchers may
// call it while their source holds a lock.
func (m Model) signal() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(UIRefreshInterval),
		waitForChange(m.changes),
		m.spinner.Tick,
		m.ensureLoaded(m.current()),
		m.fetchProfile(false),
	}
	if m.root == rootLog {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.logs.resize(m.width, m.bodyHeight())
		m.logs.render(m.theme.Styles())
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{tickCmd(UIRefreshInterval)}
		if m.root == rootLog && m.logs.follow {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case changedMsg:
		m.now = time.Now()
		return m, waitForChange(m.changes)

	case loadedMsg:
		return m, m.ensureLoaded(m.current())

	case opDoneMsg:
		m.flash = flash{text: msg.text, err: msg.err, at: time.Now()}
		if msg.err != nil {
			m.logger.Debug("action failed", zap.Error(msg.err))
		}
		return m, nil

	case profileMsg:
		if msg.err != nil {
			m.logger.Debug("profile fetch failed", zap.Error(msg.err))
		}
		return m, nil

	case logLinesMsg:
		m.logs.lines = msg.lines
		m.logs.err = msg.err
		m.logs.render(m.theme.Styles())
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.compose != nil {
		return m.renderCompose()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.compose != nil {
		return m.handleComposeKey(msg)
	}

	if m.confirm != nil {
		prompt := m.confirm
		m.confirm = nil
		if key.Matches(msg, m.keys.Confirm) {
			return m, prompt.action
		}
		m.flash = flash{text: "Cancelled", at: time.Now()}
		return m, nil
	}

	m.flash = flash{}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.logs.render(m.theme.Styles())
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, StartView: m.startView}); err != nil {
			m.logger.Warn("save prefs", zap.Error(err))
		}
		return m, nil

	case key.Matches(msg, m.keys.ViewMovies):
		return m.switchRoot(rootMovies)
	case key.Matches(msg, m.keys.ViewConnections):
		return m.switchRoot(rootConnections)
	case key.Matches(msg, m.keys.ViewMyReviews):
		return m.switchRoot(rootMyReviews)
	case key.Matches(msg, m.keys.ViewLog):
		return m.switchRoot(rootLog)

	case key.Matches(msg, m.keys.Refresh):
		if m.root == rootLog {
			return m, readLogsCmd(m.logPath)
		}
		s := m.current()
		return m, tea.Batch(loadCmd(m.screenCtx(s), s, true), m.fetchProfile(true))

	case key.Matches(msg, m.keys.EditBio):
		return m.startBioEdit()

	case key.Matches(msg, m.keys.Escape):
		m.pop()
		return m, nil
	}

	if m.root == rootLog {
		return m.handleLogsKey(msg)
	}

	s := m.current()
	if s == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		s.Move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		s.Move(1)
		return m, m.maybeLoadMore(s)
	case key.Matches(msg, m.keys.Top):
		s.MoveTo(0)
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		s.MoveTo(s.Len() - 1)
		return m, m.maybeLoadMore(s)
	}

	return m.handleAction(msg, s)
}

func (m Model) switchRoot(r rootView) (tea.Model, tea.Cmd) {
	m.root = r
	if r == rootLog {
		m.logs.follow = true
		return m, readLogsCmd(m.logPath)
	}
	return m, m.ensureLoaded(m.current())
}

// current returns the screen on top of the active root's stack, or nil for
// the log view.
func (m Model) current() screen {
	stack := m.stacks[m.root]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

func (m *Model) push(s screen) tea.Cmd {
	m.stacks[m.root] = append(m.stacks[m.root], s)
	return m.ensureLoaded(s)
}

func (m *Model) pop() {
	stack := m.stacks[m.root]
	if len(stack) > 1 {
		m.close(stack[len(stack)-1])
		m.stacks[m.root] = stack[:len(stack)-1]
	}
}

// scope is the lifetime of one screen's requests and its change watch.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	stop   func()
}

// screenCtx returns the context s's loads and writes run under, and starts
// watching s for changes. Both last until s is closed or the program exits.
func (m Model) screenCtx(s screen) context.Context {
	if s == nil {
		return m.ctx
	}
	if sc, ok := m.scopes[s]; ok {
		return sc.ctx
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.scopes[s] = scope{ctx: ctx, cancel: cancel, stop: s.Watch(m.signal)}
	return ctx
}

// close cancels whatever s still has in flight. A cancelled first load
// leaves s empty, so it loads again when shown.
func (m Model) close(s screen) {
	if sc, ok := m.scopes[s]; ok {
		sc.stop()
		sc.cancel()
		delete(m.scopes, s)
	}
}

// ensureLoaded requests the first page of s the first time it is shown, and
// again if that load was cancelled before anything arrived.
func (m Model) ensureLoaded(s screen) tea.Cmd {
	if s == nil || m.ctx.Err() != nil {
		return nil
	}
	ctx := m.screenCtx(s)
	if m.started[s] && s.Phase() != state.PhaseInitial {
		return nil
	}
	m.started[s] = true
	return loadCmd(ctx, s, false)
}

// maybeLoadMore requests the next page once the selection nears the end.
func (m Model) maybeLoadMore(s screen) tea.Cmd {
	cur := s.Cursor()
	if !cur.HasMore || cur.IsLoading || s.Phase() == state.PhaseError {
		return nil
	}
	if s.Len()-1-s.Selected() >= LoadMoreThreshold {
		return nil
	}
	return loadCmd(m.screenCtx(s), s, false)
}

func (m Model) connectionScreen(kind api.ConnectionType) *connectionsScreen {
	if s, ok := m.connections[kind]; ok {
		return s
	}
	s := newConnectionsScreen(social.NewConnections(m.backend, m.identity.UserID, kind, m.viewOpts))
	m.connections[kind] = s
	return s
}

func (m Model) fetchProfile(force bool) tea.Cmd {
	if m.profile == nil {
		return nil
	}
	cache, ctx := m.profile, m.ctx
	return func() tea.Msg {
		_, err := cache.Get(ctx, force)
		return profileMsg{err: err}
	}
}

// bodyHeight is the space left for the active view after the header, the
// title bar, the status line and the key hints.
func (m Model) bodyHeight() int {
	h := m.height - 4
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) isOwn(userID string) bool {
	return m.identity.UserID != "" && userID == m.identity.UserID
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderKeyHints())
	return b.String()
}

func (m Model) renderBody() string {
	if m.root == rootLog {
		return m.logs.view()
	}
	s := m.current()
	if s == nil {
		return ""
	}
	styles := m.theme.Styles()
	height := m.bodyHeight()

	var lines []string
	switch {
	case s.Len() == 0 && (s.Phase() == state.PhaseLoading || s.Phase() == state.PhaseInitial):
		lines = []string{" " + m.spinner.View() + styles.MutedText.Render(" Loading…")}
	case s.Len() == 0 && s.Phase() == state.PhaseError:
		lines = []string{
			" " + styles.DangerText.Render(userMessage(s.Err())),
			" " + styles.MutedText.Render("Press r to retry"),
		}
	case s.Len() == 0:
		lines = []string{" " + styles.MutedText.Render(s.EmptyText())}
	default:
		lines = s.Rows(styles, m.width, height-1, m.now)
		lines = append(lines, m.listFooter(s, styles))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

// listFooter is the line under a non-empty list: paging progress or the
// error of a failed next-page load.
func (m Model) listFooter(s screen, styles Styles) string {
	cur := s.Cursor()
	switch {
	case s.Phase() == state.PhaseLoadingMore:
		return " " + m.spinner.View() + styles.MutedText.Render(" Loading more…")
	case s.Phase() == state.PhaseError:
		return " " + styles.DangerText.Render(userMessage(s.Err())) + styles.MutedText.Render("  r to retry")
	case !cur.HasMore:
		return " " + styles.FaintText.Render("End of list · "+plural(int64(s.Len()), "item"))
	default:
		return ""
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	default:
		return apperr.UserMessage(err)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	teaOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		teaOpts = append(teaOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, teaOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
