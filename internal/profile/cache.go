// Package profile caches the signed-in user's profile for the header, the
// background refresher and the profile editor.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/state"
)

// DefaultTTL is how long a fetched profile counts as fresh.
const DefaultTTL = 60 * time.Second

// ErrNotLoaded is returned by GetSync before any fetch has completed.
var ErrNotLoaded = errors.New("profile not loaded")

const flightKey = "current-user"

// Cache is a single-slot TTL cache of the current user. One Cache is built at
// startup and shared by everything that shows or edits the profile.
type Cache struct {
	svc    api.ProfileService
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	group singleflight.Group
	store state.Store[api.UserProfile]

	mu        sync.Mutex
	data      *api.UserProfile
	err       error
	fetchedAt time.Time
}

// Option customises a Cache.
type Option func(*Cache)

func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(svc api.ProfileService, opts ...Option) *Cache {
	c := &Cache{
		svc:    svc,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached profile while it is fresh and force is unset.
// Otherwise it fetches; concurrent callers share one request. A failed fetch
// returns the error but keeps any previously cached profile. Cancelling ctx
// releases only this caller; the shared request keeps running for the others.
func (c *Cache) Get(ctx context.Context, force bool) (api.UserProfile, error) {
	c.mu.Lock()
	if !force && c.data != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		p := *c.data
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return api.UserProfile{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight profile fetch")
		}
		if res.Err != nil {
			return api.UserProfile{}, res.Err
		}
		return res.Val.(api.UserProfile), nil
	}
}

func (c *Cache) fetch(ctx context.Context) (api.UserProfile, error) {
	c.store.Publish(state.Loading[api.UserProfile]())

	p, err := c.svc.CurrentUser(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if errors.Is(err, context.Canceled) {
		c.publishCurrentLocked()
		return api.UserProfile{}, fmt.Errorf("fetch current user: %w", err)
	}
	if err != nil {
		err = apperr.Classify(err)
		c.logger.Warn("profile fetch failed", zap.Error(err))
		if c.data == nil {
			c.err = err
		}
		c.store.Publish(state.Failed(err, c.itemsLocked()))
		return api.UserProfile{}, fmt.Errorf("fetch current user: %w", err)
	}
	c.storeLocked(p)
	c.logger.Debug("profile fetched", zap.String("user_id", p.ID))
	return p, nil
}

// Update sends fields to the backend and, on success, replaces the cached
// profile with the server's copy. A failure leaves the cache untouched.
func (c *Cache) Update(ctx context.Context, fields api.ProfileUpdate) (api.UserProfile, error) {
	if fields.DisplayName == nil && fields.Bio == nil && fields.IsPrivate == nil {
		return api.UserProfile{}, apperr.Validation("nothing to update")
	}
	p, err := c.svc.UpdateProfile(ctx, fields)
	if err != nil {
		err = apperr.Classify(err)
		c.logger.Warn("profile update failed", zap.Error(err))
		return api.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}
	c.mu.Lock()
	c.storeLocked(p)
	c.mu.Unlock()
	c.logger.Info("profile updated", zap.String("user_id", p.ID))
	return p, nil
}

// Invalidate drops the cached profile, error and timestamp.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.err = nil
	c.fetchedAt = time.Time{}
	c.store.Publish(state.Initial[api.UserProfile]())
}

// GetSync returns the last known profile without fetching. Before any
// successful fetch it returns the cached error, or ErrNotLoaded.
func (c *Cache) GetSync() (api.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.data != nil:
		return *c.data, nil
	case c.err != nil:
		return api.UserProfile{}, c.err
	default:
		return api.UserProfile{}, ErrNotLoaded
	}
}

// FetchedAt reports when the cached profile was last refreshed; zero when
// nothing is cached.
func (c *Cache) FetchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt
}

// Watch registers fn for every cache transition. fn runs while the cache is
// locked and must not call back into it.
func (c *Cache) Watch(fn func(state.View[api.UserProfile])) func() {
	return c.store.Watch(fn)
}

// Snapshot exposes failure bookkeeping for the header's offline badge.
func (c *Cache) Snapshot() state.Snapshot[api.UserProfile] {
	return c.store.Snapshot()
}

// storeLocked records p as fresh. Callers hold c.mu.
func (c *Cache) storeLocked(p api.UserProfile) {
	c.data = &p
	c.err = nil
	c.fetchedAt = c.now()
	c.store.Publish(state.Success([]api.UserProfile{p}))
}

// publishCurrentLocked puts back the view for what is cached, undoing the
// Loading a cancelled fetch published.
func (c *Cache) publishCurrentLocked() {
	if c.data == nil {
		c.store.Publish(state.Initial[api.UserProfile]())
		return
	}
	c.store.Publish(state.Success([]api.UserProfile{*c.data}))
}

func (c *Cache) itemsLocked() []api.UserProfile {
	if c.data == nil {
		return nil
	}
	return []api.UserProfile{*c.data}
}
