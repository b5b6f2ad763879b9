package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/profile"
)

const (
	retryBase  = 2 * time.Second
	maxBackoff = 30 * time.Second
)

// profileSource is the part of profile.Cache the refresher drives.
type profileSource interface {
	Get(ctx context.Context, force bool) (api.UserProfile, error)
}

// StartProfileRefresher launches a background goroutine that keeps the
// cached profile fresh. It returns immediately; the goroutine exits with ctx.
// After a failure the next attempt follows calculateBackoff instead of the
// regular interval.
func StartProfileRefresher(ctx context.Context, src profileSource, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = profile.DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		failures := 0
		for {
			wait := interval
			if _, err := src.Get(ctx, false); err != nil {
				if ctx.Err() != nil {
					return
				}
				wait = calculateBackoff(failures, retryBase)
				failures++
				logger.Warn("profile refresh failed",
					zap.Int("failures", failures),
					zap.Duration("retry_in", wait),
					zap.Error(err))
			} else {
				failures = 0
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff returns base * 2^failures, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return min(backoff, maxBackoff)
}
