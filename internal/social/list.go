package social

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cinevibe/cinevibe/internal/feed"
	"github.com/cinevibe/cinevibe/internal/operation"
)

// Options are shared by every view-model constructor.
type Options struct {
	PageSize int
	// ResetDelay is how long an operation result stays visible; zero means
	// operation.DefaultResetDelay and a negative value disables the reset.
	ResetDelay time.Duration
	Logger     *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) controllerOptions(name string) []feed.Option {
	return []feed.Option{
		feed.WithPageSize(o.PageSize),
		feed.WithLogger(o.logger().Named(name)),
	}
}

func (o Options) machine(name string) *operation.Machine {
	delay := o.ResetDelay
	switch {
	case delay == 0:
		delay = operation.DefaultResetDelay
	case delay < 0:
		delay = 0
	}
	return operation.NewMachine(
		operation.WithResetDelay(delay),
		operation.WithLogger(o.logger().Named(name)),
	)
}

// list is the part every writable view-model shares: a paged controller for
// reads and an operation machine for writes.
type list[T any, K comparable] struct {
	*feed.Controller[T, K]
	ops *operation.Machine
}

// Operation exposes the write state for spinners and status messages.
func (l *list[T, K]) Operation() *operation.Machine { return l.ops }

// run executes fn as a tracked operation and reloads the list after a
// successful mutating write.
func run[T any, K comparable, R any](ctx context.Context, l *list[T, K], kind operation.Kind, fn func(context.Context) (R, error)) (R, error) {
	result, err := operation.Do(ctx, l.ops, kind, fn)
	if err != nil {
		return result, err
	}
	if kind.Mutates() {
		l.Load(ctx, true)
	}
	return result, nil
}

// toggle runs an optimistic flip of key as a tracked operation, picking
// onKind or offKind from the flag's current value.
func toggle[T any, K comparable](ctx context.Context, l *list[T, K], m *feed.Mutator[T, K], lens feed.Lens[T], key K, onKind, offKind operation.Kind, remote feed.Remote) (bool, error) {
	item, ok := l.Find(key)
	if !ok {
		return false, feed.ErrNotLoaded
	}
	active := !lens.Get(item).Active
	kind := offKind
	if active {
		kind = onKind
	}
	_, err := run(ctx, l, kind, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.Set(ctx, key, active, remote)
	})
	return active, err
}
