package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/state"
)

// DefaultPageSize is used when a controller is built without one.
const DefaultPageSize = 20

// Fetcher reads one page of a remote collection.
type Fetcher[T any] func(ctx context.Context, page, size int) (api.Page[T], error)

// Cursor is the paging bookkeeping of a Controller.
type Cursor struct {
	PageIndex int
	PageSize  int
	HasMore   bool
	IsLoading bool
}

// Controller accumulates one paged remote collection and publishes its view
// state. Fetches are single-flight per controller; separate controllers are
// independent.
type Controller[T any, K comparable] struct {
	fetch  Fetcher[T]
	key    func(T) K
	store  *state.Store[T]
	logger *zap.Logger

	mu         sync.Mutex
	cursor     Cursor
	items      []T
	lastGood   []T
	generation uint64
}

// Option customises a Controller.
type Option func(*options)

type options struct {
	pageSize int
	logger   *zap.Logger
}

func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewController builds a controller over fetch; key extracts the unique id of
// an item.
func NewController[T any, K comparable](fetch Fetcher[T], key func(T) K, opts ...Option) *Controller[T, K] {
	o := options{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize <= 0 {
		o.pageSize = DefaultPageSize
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Controller[T, K]{
		fetch:  fetch,
		key:    key,
		store:  &state.Store[T]{},
		logger: o.logger,
		cursor: Cursor{PageSize: o.pageSize, HasMore: true},
	}
}

// Load fetches the next page, or the first page again when refresh is set.
// Without refresh the call is a no-op while a fetch is in flight or after the
// last page; the return value reports whether a fetch was issued. A refresh
// always proceeds and supersedes any in-flight fetch, whose result is dropped.
// Failures are published as an Error view, never returned.
func (c *Controller[T, K]) Load(ctx context.Context, refresh bool) bool {
	c.mu.Lock()
	if refresh {
		c.cursor.PageIndex = 0
		c.cursor.HasMore = true
		c.items = nil
	} else if c.cursor.IsLoading || !c.cursor.HasMore {
		c.mu.Unlock()
		return false
	}
	c.generation++
	gen := c.generation
	c.cursor.IsLoading = true
	page := c.cursor.PageIndex
	size := c.cursor.PageSize
	if page == 0 {
		c.store.Publish(state.Loading[T]())
	} else {
		c.store.Publish(state.LoadingMore(c.items))
	}
	c.mu.Unlock()

	result, err := c.fetch(ctx, page, size)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("dropping superseded page", zap.Int("page", page))
		return true
	}
	c.cursor.IsLoading = false

	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.publishCurrent()
			return true
		}
		err = apperr.Classify(err)
		c.logger.Warn("page fetch failed", zap.Int("page", page), zap.Error(err))
		if c.items == nil {
			c.items = c.lastGood
		}
		c.store.Publish(state.Failed(err, c.lastGood))
		return true
	}

	terminal := len(result.Items) < size || result.IsLast
	if terminal {
		c.cursor.HasMore = false
	} else {
		c.cursor.PageIndex++
	}
	if page == 0 {
		c.items = append([]T(nil), result.Items...)
	} else {
		c.items = append(c.items, result.Items...)
	}
	c.lastGood = c.items
	c.store.Publish(state.Success(c.items))
	return true
}

// publishCurrent restores a non-loading view after a cancelled fetch.
// Callers hold c.mu.
func (c *Controller[T, K]) publishCurrent() {
	if c.items == nil && c.lastGood == nil {
		c.store.Publish(state.Initial[T]())
		return
	}
	if c.items == nil {
		c.items = c.lastGood
	}
	c.store.Publish(state.Success(c.items))
}

// Cursor returns the current paging bookkeeping.
func (c *Controller[T, K]) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// View returns the current view state.
func (c *Controller[T, K]) View() state.View[T] {
	return c.store.View()
}

// Snapshot returns the current view plus failure bookkeeping.
func (c *Controller[T, K]) Snapshot() state.Snapshot[T] {
	return c.store.Snapshot()
}

// Watch registers fn for every view change. fn runs on the goroutine that
// changed the view, while the controller is locked, so it must not call back
// into the controller.
func (c *Controller[T, K]) Watch(fn func(state.View[T])) func() {
	return c.store.Watch(fn)
}

// Find returns the accumulated item with the given key.
func (c *Controller[T, K]) Find(key K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(key); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Replace swaps the item with the given key for fn(item) in place, keeping
// order, and republishes the current phase. It reports false when the key is
// not loaded.
func (c *Controller[T, K]) Replace(key K, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	next := make([]T, len(c.items))
	copy(next, c.items)
	next[i] = fn(next[i])
	c.items = next
	c.lastGood = next
	c.republish()
	return true
}

// Remove drops the item with the given key, used right after a delete so the
// row disappears before the resynchronising refresh lands.
func (c *Controller[T, K]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:i]...)
	next = append(next, c.items[i+1:]...)
	c.items = next
	c.lastGood = next
	c.republish()
	return true
}

// republish re-emits the active phase with the current items. Callers hold c.mu.
func (c *Controller[T, K]) republish() {
	current := c.store.View()
	switch current.Phase {
	case state.PhaseLoadingMore:
		c.store.Publish(state.LoadingMore(c.items))
	case state.PhaseError:
		c.store.Publish(state.Failed(current.Err, c.items))
	default:
		c.store.Publish(state.Success(c.items))
	}
}

func (c *Controller[T, K]) indexOf(key K) int {
	for i := range c.items {
		if c.key(c.items[i]) == key {
			return i
		}
	}
	return -1
}
