package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNotLoaded is returned when an optimistic action targets an item that is
// not in the controller's accumulated list.
var ErrNotLoaded = errors.New("item not loaded")

// Toggle is the flag and dependent counter an optimistic action flips,
// e.g. UserHasLiked/LikeCount or IsFollowing/FollowerCount.
type Toggle struct {
	Active bool
	Count  int64
}

// Predict returns the state after switching the flag to active: the counter
// moves by one in the matching direction and never drops below zero.
// Switching to the current value changes nothing.
func (t Toggle) Predict(active bool) Toggle {
	if t.Active == active {
		return t
	}
	next := Toggle{Active: active, Count: t.Count}
	if active {
		next.Count++
	} else {
		next.Count--
	}
	if next.Count < 0 {
		next.Count = 0
	}
	return next
}

// Lens reads and writes a Toggle on an item.
type Lens[T any] struct {
	Get func(T) Toggle
	Set func(T, Toggle) T
}

// Ticket identifies one optimistic application. Prior is the state before it,
// which may itself be an unconfirmed guess when toggles overlap.
type Ticket[K comparable] struct {
	Key   K
	Seq   uint64
	Prior Toggle
}

// Mutator applies optimistic toggles to items of a Controller and settles
// them once the server answers. Each apply stamps a per-key sequence number;
// settlements carrying an older number than the latest apply for that key are
// discarded, so only the newest toggle's response is shown. A rollback of the
// newest toggle restores the last state the server confirmed for the item,
// not the guess the toggle was stacked on.
type Mutator[T any, K comparable] struct {
	ctrl   *Controller[T, K]
	lens   Lens[T]
	logger *zap.Logger

	mu   sync.Mutex
	seq  map[K]uint64
	base map[K]confirmed
	next uint64
}

// confirmed is the last server-backed state under a key's open tickets and
// the ticket that produced it; zero seq means it predates them all.
type confirmed struct {
	state Toggle
	seq   uint64
}

// NewMutator binds a mutator to ctrl.
func NewMutator[T any, K comparable](ctrl *Controller[T, K], lens Lens[T], logger *zap.Logger) *Mutator[T, K] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mutator[T, K]{
		ctrl:   ctrl,
		lens:   lens,
		logger: logger,
		seq:    make(map[K]uint64),
		base:   make(map[K]confirmed),
	}
}

// ApplyOptimistic sets the flag of the item with key to active ahead of the
// server. It reports false, changing nothing, when the item is not loaded.
func (m *Mutator[T, K]) ApplyOptimistic(key K, active bool) (Ticket[K], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prior Toggle
	found := m.ctrl.Replace(key, func(item T) T {
		prior = m.lens.Get(item)
		return m.lens.Set(item, prior.Predict(active))
	})
	if !found {
		m.logger.Debug("optimistic update skipped, item not loaded", zap.Any("key", key))
		return Ticket[K]{}, false
	}
	if _, open := m.seq[key]; !open {
		m.base[key] = confirmed{state: prior}
	}
	m.next++
	m.seq[key] = m.next
	return Ticket[K]{Key: key, Seq: m.next, Prior: prior}, true
}

// Reconcile replaces the optimistic guess with the server's state. It
// reports false when a newer toggle on the same item superseded t.
// A superseded success still becomes the confirmed state a later rollback
// returns to.
func (m *Mutator[T, K]) Reconcile(t Ticket[K], server Toggle) bool {
	return m.settle(t, &server)
}

// Rollback restores the last server-confirmed state after the remote call
// failed. It reports false when a newer toggle on the same item superseded t.
func (m *Mutator[T, K]) Rollback(t Ticket[K]) bool {
	return m.settle(t, nil)
}

// settle applies server, or the confirmed base when server is nil.
func (m *Mutator[T, K]) settle(t Ticket[K], server *Toggle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest, open := m.seq[t.Key]
	if latest != t.Seq {
		op := "rollback"
		if server != nil {
			op = "reconcile"
			if b := m.base[t.Key]; open && t.Seq < latest && t.Seq > b.seq {
				m.base[t.Key] = confirmed{state: *server, seq: t.Seq}
			}
		}
		m.logger.Debug("discarding stale "+op, zap.Any("key", t.Key), zap.Uint64("seq", t.Seq), zap.Uint64("latest", latest))
		return false
	}
	to := t.Prior
	if b, ok := m.base[t.Key]; ok {
		to = b.state
	}
	if server != nil {
		to = *server
	}
	delete(m.seq, t.Key)
	delete(m.base, t.Key)
	return m.ctrl.Replace(t.Key, func(item T) T {
		return m.lens.Set(item, to)
	})
}

// Remote performs the server call for switching the flag to active and
// returns the authoritative state.
type Remote func(ctx context.Context, active bool) (Toggle, error)

// Set switches the item's flag to active, calls remote, then reconciles on
// success or rolls back on failure; the remote error is returned after the
// rollback. A missing item is a logged no-op returning ErrNotLoaded, and
// remote is not called.
func (m *Mutator[T, K]) Set(ctx context.Context, key K, active bool, remote Remote) error {
	ticket, ok := m.ApplyOptimistic(key, active)
	if !ok {
		return ErrNotLoaded
	}
	server, err := remote(ctx, active)
	if err != nil {
		m.Rollback(ticket)
		return err
	}
	m.Reconcile(ticket, server)
	return nil
}

// Toggle is Set with the opposite of the item's current flag. It returns the
// flag value that was requested.
func (m *Mutator[T, K]) Toggle(ctx context.Context, key K, remote Remote) (bool, error) {
	current, ok := m.ctrl.Find(key)
	if !ok {
		m.logger.Debug("toggle skipped, item not loaded", zap.Any("key", key))
		return false, ErrNotLoaded
	}
	active := !m.lens.Get(current).Active
	return active, m.Set(ctx, key, active, remote)
}
