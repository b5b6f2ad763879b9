package social

import (
	"context"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/feed"
	"github.com/cinevibe/cinevibe/internal/operation"
)

var followLens = feed.Lens[api.Connection]{
	Get: func(c api.Connection) feed.Toggle {
		return feed.Toggle{Active: c.IsFollowing, Count: c.FollowerCount}
	},
	Set: func(c api.Connection, t feed.Toggle) api.Connection {
		c.IsFollowing = t.Active
		c.FollowerCount = t.Count
		return c
	},
}

// ConnectionTypes is the cycling order of the connection tabs.
var ConnectionTypes = []api.ConnectionType{
	api.ConnectionFollowers,
	api.ConnectionFollowing,
	api.ConnectionPending,
}

// Connections is the view-model of one followers, following or pending list.
type Connections struct {
	list[api.Connection, string]
	svc     api.ConnectionService
	follows *feed.Mutator[api.Connection, string]
	userID  string
	kind    api.ConnectionType
}

func NewConnections(svc api.ConnectionService, userID string, kind api.ConnectionType, opts Options) *Connections {
	fetch := func(ctx context.Context, page, size int) (api.Page[api.Connection], error) {
		return svc.FetchConnections(ctx, userID, kind, page, size)
	}
	ctrl := feed.NewController(fetch, func(c api.Connection) string { return c.ID }, opts.controllerOptions("connections")...)
	return &Connections{
		list:    list[api.Connection, string]{Controller: ctrl, ops: opts.machine("connections")},
		svc:     svc,
		follows: feed.NewMutator(ctrl, followLens, opts.logger().Named("connections")),
		userID:  userID,
		kind:    kind,
	}
}

func (c *Connections) Type() api.ConnectionType { return c.kind }

// ToggleFollow follows or unfollows the other party of connection id,
// updating IsFollowing and FollowerCount ahead of the server.
func (c *Connections) ToggleFollow(ctx context.Context, id string) (bool, error) {
	if err := validateKey(id, "connection"); err != nil {
		return false, err
	}
	conn, ok := c.Find(id)
	if !ok {
		return false, feed.ErrNotLoaded
	}
	if err := validateKey(conn.UserID, "user"); err != nil {
		return false, err
	}
	return toggle(ctx, &c.list, c.follows, followLens, id, operation.KindFollow, operation.KindUnfollow,
		func(ctx context.Context, active bool) (feed.Toggle, error) {
			call := c.svc.Unfollow
			if active {
				call = c.svc.Follow
			}
			s, err := call(ctx, conn.UserID)
			return feed.Toggle{Active: s.IsFollowing, Count: s.FollowerCount}, err
		})
}

// Accept approves a pending follow request.
func (c *Connections) Accept(ctx context.Context, id string) (api.Connection, error) {
	if err := c.checkPending(id); err != nil {
		return api.Connection{}, err
	}
	return run(ctx, &c.list, operation.KindAccept, func(ctx context.Context) (api.Connection, error) {
		return c.svc.AcceptConnection(ctx, id)
	})
}

// Reject declines a pending follow request.
func (c *Connections) Reject(ctx context.Context, id string) (api.Connection, error) {
	if err := c.checkPending(id); err != nil {
		return api.Connection{}, err
	}
	return run(ctx, &c.list, operation.KindReject, func(ctx context.Context) (api.Connection, error) {
		return c.svc.RejectConnection(ctx, id)
	})
}

// checkPending rejects ids that are loaded but no longer pending. Ids not
// in the list are left for the server to judge.
func (c *Connections) checkPending(id string) error {
	if err := validateKey(id, "connection"); err != nil {
		return err
	}
	if conn, ok := c.Find(id); ok && conn.Status != "" && conn.Status != api.StatusPending {
		return apperr.Validation("connection is already " + string(conn.Status))
	}
	return nil
}
