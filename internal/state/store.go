package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is a copy of a Store's view plus bookkeeping for the UI.
type Snapshot[T any] struct {
	View                View[T]
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has failed several loads in a row.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the current View of one collection and notifies watchers on
// every change. The zero value is ready to use and starts in PhaseInitial.
type Store[T any] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
	watchers map[int]func(View[T])
	nextID   int
}

// Publish replaces the current view. Error views bump the failure counter and
// record the error; success views reset both.
func (s *Store[T]) Publish(v View[T]) {
	s.mu.Lock()
	stored := v.clone()
	s.snapshot.View = stored
	s.snapshot.LastUpdated = time.Now()
	switch v.Phase {
	case PhaseError:
		s.snapshot.LastError = v.Err
		s.snapshot.ConsecutiveFailures++
	case PhaseSuccess:
		s.snapshot.LastError = nil
		s.snapshot.ConsecutiveFailures = 0
	}
	watchers := make([]func(View[T]), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(stored.clone())
	}
}

// View returns a copy of the current view.
func (s *Store[T]) View() View[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.View.clone()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.View = s.snapshot.View.clone()
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Watch registers fn to be called after every Publish, outside the lock.
// The returned func unregisters it.
func (s *Store[T]) Watch(fn func(View[T])) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchers == nil {
		s.watchers = make(map[int]func(View[T]))
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}
