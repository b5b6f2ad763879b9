// Package operation tracks the lifecycle of one user-initiated write so a
// screen can show a spinner or error for it without touching its list.
package operation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cinevibe/cinevibe/internal/apperr"
)

// DefaultResetDelay is how long a terminal state stays visible before the
// machine returns to Idle on its own.
const DefaultResetDelay = 2 * time.Second

// ErrBusy is returned when an operation is started while another one is
// still in flight on the same machine.
var ErrBusy = errors.New("another operation is in progress")

// Kind names the write being tracked.
type Kind string

const (
	KindCreate   Kind = "create"
	KindUpdate   Kind = "update"
	KindDelete   Kind = "delete"
	KindLike     Kind = "like"
	KindUnlike   Kind = "unlike"
	KindFollow   Kind = "follow"
	KindUnfollow Kind = "unfollow"
	KindAccept   Kind = "accept"
	KindReject   Kind = "reject"
)

func (k Kind) String() string { return string(k) }

// Mutates reports whether a successful operation of this kind changes list
// membership or content enough that the owning list must be reloaded.
// Like and Unlike are settled in place by the optimistic mutator.
func (k Kind) Mutates() bool {
	switch k {
	case KindCreate, KindUpdate, KindDelete, KindAccept, KindReject, KindFollow, KindUnfollow:
		return true
	}
	return false
}

// Phase discriminates the variants of State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the tagged union a screen renders for its current write. Kind is
// set for every phase except Idle; Result only for Success; Err only for Error.
type State struct {
	Phase  Phase
	Kind   Kind
	Result any
	Err    error
	At     time.Time
}

func (s State) IsBusy() bool { return s.Phase == PhaseLoading }

// Machine is a single-slot operation tracker. The zero value is not usable;
// build one with NewMachine.
type Machine struct {
	resetDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	state    State
	gen      uint64
	timer    *time.Timer
	watchers map[int]func(State)
	nextID   int
}

// Option customises a Machine.
type Option func(*Machine)

// WithResetDelay sets how long Success and Error stay visible. A delay of
// zero or less disables the automatic reset.
func WithResetDelay(d time.Duration) Option {
	return func(m *Machine) { m.resetDelay = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		resetDelay: DefaultResetDelay,
		logger:     zap.NewNop(),
		now:        time.Now,
		watchers:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Watch registers fn for every transition. fn is called outside the lock.
func (m *Machine) Watch(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

// Reset returns the machine to Idle unless an operation is in flight.
func (m *Machine) Reset() {
	m.mu.Lock()
	if m.state.Phase == PhaseLoading || m.state.Phase == PhaseIdle {
		m.mu.Unlock()
		return
	}
	m.stopTimer()
	m.gen++
	m.transition(State{Phase: PhaseIdle})
}

// begin moves to Loading. Any pending reset timer is cancelled because the
// new operation replaces the terminal state it was going to clear.
func (m *Machine) begin(kind Kind) (uint64, error) {
	m.mu.Lock()
	if m.state.Phase == PhaseLoading {
		current := m.state.Kind
		m.mu.Unlock()
		m.logger.Debug("operation rejected, machine busy",
			zap.Stringer("kind", kind), zap.Stringer("active", current))
		return 0, ErrBusy
	}
	m.stopTimer()
	m.gen++
	gen := m.gen
	m.transition(State{Phase: PhaseLoading, Kind: kind})
	return gen, nil
}

func (m *Machine) finish(gen uint64, next State) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	if m.resetDelay > 0 {
		m.timer = time.AfterFunc(m.resetDelay, func() { m.expire(gen) })
	}
	m.transition(next)
}

func (m *Machine) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state.Phase == PhaseLoading || m.state.Phase == PhaseIdle {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.transition(State{Phase: PhaseIdle})
}

// transition stores next, releases the lock and notifies watchers.
// Callers hold m.mu.
func (m *Machine) transition(next State) {
	next.At = m.now()
	m.state = next
	watchers := make([]func(State), 0, len(m.watchers))
	for _, fn := range m.watchers {
		watchers = append(watchers, fn)
	}
	m.mu.Unlock()

	for _, fn := range watchers {
		fn(next)
	}
}

// stopTimer cancels the pending reset. Callers hold m.mu.
func (m *Machine) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Do runs fn as an operation of the given kind on m: Loading while fn runs,
// then Success with its result or Error with its classified failure. The
// result and error are also returned so the caller can chain follow-up work,
// such as reloading its list when kind.Mutates(). ErrBusy is returned without
// calling fn when m already has an operation in flight.
func Do[R any](ctx context.Context, m *Machine, kind Kind, fn func(context.Context) (R, error)) (R, error) {
	var zero R
	gen, err := m.begin(kind)
	if err != nil {
		return zero, err
	}

	result, err := fn(ctx)
	if err != nil {
		err = apperr.Classify(err)
		m.logger.Warn("operation failed", zap.Stringer("kind", kind), zap.Error(err))
		m.finish(gen, State{Phase: PhaseError, Kind: kind, Err: err})
		return zero, err
	}
	m.logger.Info("operation succeeded", zap.Stringer("kind", kind))
	m.finish(gen, State{Phase: PhaseSuccess, Kind: kind, Result: result})
	return result, nil
}
