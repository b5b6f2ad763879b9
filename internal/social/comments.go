package social

import (
	"context"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/feed"
	"github.com/cinevibe/cinevibe/internal/operation"
)

var commentLikes = feed.Lens[api.Comment]{
	Get: func(c api.Comment) feed.Toggle {
		return feed.Toggle{Active: c.UserHasLiked, Count: c.LikeCount}
	},
	Set: func(c api.Comment, t feed.Toggle) api.Comment {
		c.UserHasLiked = t.Active
		c.LikeCount = t.Count
		return c
	},
}

// Comments is the view-model of the comment thread under one review.
type Comments struct {
	list[api.Comment, int64]
	svc      api.CommentService
	likes    *feed.Mutator[api.Comment, int64]
	reviewID int64
}

func NewComments(svc api.CommentService, reviewID int64, opts Options) *Comments {
	fetch := func(ctx context.Context, page, size int) (api.Page[api.Comment], error) {
		return svc.FetchComments(ctx, reviewID, page, size)
	}
	ctrl := feed.NewController(fetch, func(c api.Comment) int64 { return c.ID }, opts.controllerOptions("comments")...)
	return &Comments{
		list:     list[api.Comment, int64]{Controller: ctrl, ops: opts.machine("comments")},
		svc:      svc,
		likes:    feed.NewMutator(ctrl, commentLikes, opts.logger().Named("comments")),
		reviewID: reviewID,
	}
}

func (c *Comments) ReviewID() int64 { return c.reviewID }

// ToggleLike likes or unlikes the comment optimistically and reports the
// flag that was requested.
func (c *Comments) ToggleLike(ctx context.Context, id int64) (bool, error) {
	if err := validateID(id, "comment"); err != nil {
		return false, err
	}
	return toggle(ctx, &c.list, c.likes, commentLikes, id, operation.KindLike, operation.KindUnlike,
		func(ctx context.Context, active bool) (feed.Toggle, error) {
			call := c.svc.UnlikeComment
			if active {
				call = c.svc.LikeComment
			}
			s, err := call(ctx, id)
			return feed.Toggle{Active: s.UserHasLiked, Count: s.LikeCount}, err
		})
}

func (c *Comments) Create(ctx context.Context, content string) (api.Comment, error) {
	if err := validateID(c.reviewID, "review"); err != nil {
		return api.Comment{}, err
	}
	body, err := ValidateContent(content)
	if err != nil {
		return api.Comment{}, err
	}
	return run(ctx, &c.list, operation.KindCreate, func(ctx context.Context) (api.Comment, error) {
		return c.svc.CreateComment(ctx, c.reviewID, api.CommentInput{Content: body})
	})
}

func (c *Comments) Update(ctx context.Context, id int64, content string) (api.Comment, error) {
	if err := validateID(id, "comment"); err != nil {
		return api.Comment{}, err
	}
	body, err := ValidateContent(content)
	if err != nil {
		return api.Comment{}, err
	}
	return run(ctx, &c.list, operation.KindUpdate, func(ctx context.Context) (api.Comment, error) {
		return c.svc.UpdateComment(ctx, id, api.CommentInput{Content: body})
	})
}

func (c *Comments) Delete(ctx context.Context, id int64) error {
	if err := validateID(id, "comment"); err != nil {
		return err
	}
	_, err := run(ctx, &c.list, operation.KindDelete, func(ctx context.Context) (int64, error) {
		if err := c.svc.DeleteComment(ctx, id); err != nil {
			return 0, err
		}
		c.Remove(id)
		return id, nil
	})
	return err
}
