package social

import (
	"context"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/feed"
	"github.com/cinevibe/cinevibe/internal/operation"
)

var reviewLikes = feed.Lens[api.Review]{
	Get: func(r api.Review) feed.Toggle {
		return feed.Toggle{Active: r.UserHasLiked, Count: r.LikeCount}
	},
	Set: func(r api.Review, t feed.Toggle) api.Review {
		r.UserHasLiked = t.Active
		r.LikeCount = t.Count
		return r
	},
}

func reviewKey(r api.Review) int64 { return r.ID }

// Reviews is the view-model of one review list: the reviews of a movie, or
// the reviews written by a user.
type Reviews struct {
	list[api.Review, int64]
	svc     api.ReviewService
	likes   *feed.Mutator[api.Review, int64]
	movieID int64
}

// NewMovieReviews lists the reviews of movieID. New reviews are written
// against that movie.
func NewMovieReviews(svc api.ReviewService, movieID int64, opts Options) *Reviews {
	fetch := func(ctx context.Context, page, size int) (api.Page[api.Review], error) {
		return svc.FetchMovieReviews(ctx, movieID, page, size)
	}
	return newReviews(svc, fetch, movieID, opts)
}

// NewUserReviews lists the reviews written by userID. Such a list cannot
// create reviews since it has no movie.
func NewUserReviews(svc api.ReviewService, userID string, opts Options) *Reviews {
	fetch := func(ctx context.Context, page, size int) (api.Page[api.Review], error) {
		return svc.FetchUserReviews(ctx, userID, page, size)
	}
	return newReviews(svc, fetch, 0, opts)
}

func newReviews(svc api.ReviewService, fetch feed.Fetcher[api.Review], movieID int64, opts Options) *Reviews {
	ctrl := feed.NewController(fetch, reviewKey, opts.controllerOptions("reviews")...)
	return &Reviews{
		list:    list[api.Review, int64]{Controller: ctrl, ops: opts.machine("reviews")},
		svc:     svc,
		likes:   feed.NewMutator(ctrl, reviewLikes, opts.logger().Named("reviews")),
		movieID: movieID,
	}
}

// MovieID is the movie new reviews are written against, or zero.
func (r *Reviews) MovieID() int64 { return r.movieID }

// ToggleLike likes or unlikes the review optimistically and reports the flag
// that was requested.
func (r *Reviews) ToggleLike(ctx context.Context, id int64) (bool, error) {
	if err := validateID(id, "review"); err != nil {
		return false, err
	}
	return toggle(ctx, &r.list, r.likes, reviewLikes, id, operation.KindLike, operation.KindUnlike,
		func(ctx context.Context, active bool) (feed.Toggle, error) {
			call := r.svc.UnlikeReview
			if active {
				call = r.svc.LikeReview
			}
			s, err := call(ctx, id)
			return feed.Toggle{Active: s.UserHasLiked, Count: s.LikeCount}, err
		})
}

func (r *Reviews) Create(ctx context.Context, rating int, content string) (api.Review, error) {
	if r.movieID <= 0 {
		return api.Review{}, apperr.Validation("reviews are written from a movie")
	}
	in, err := reviewInput(rating, content)
	if err != nil {
		return api.Review{}, err
	}
	return run(ctx, &r.list, operation.KindCreate, func(ctx context.Context) (api.Review, error) {
		return r.svc.CreateReview(ctx, r.movieID, in)
	})
}

func (r *Reviews) Update(ctx context.Context, id int64, rating int, content string) (api.Review, error) {
	if err := validateID(id, "review"); err != nil {
		return api.Review{}, err
	}
	in, err := reviewInput(rating, content)
	if err != nil {
		return api.Review{}, err
	}
	return run(ctx, &r.list, operation.KindUpdate, func(ctx context.Context) (api.Review, error) {
		return r.svc.UpdateReview(ctx, id, in)
	})
}

// Delete removes the review on the server, drops the row locally and then
// reloads the list.
func (r *Reviews) Delete(ctx context.Context, id int64) error {
	if err := validateID(id, "review"); err != nil {
		return err
	}
	_, err := run(ctx, &r.list, operation.KindDelete, func(ctx context.Context) (int64, error) {
		if err := r.svc.DeleteReview(ctx, id); err != nil {
			return 0, err
		}
		r.Remove(id)
		return id, nil
	})
	return err
}

func reviewInput(rating int, content string) (api.ReviewInput, error) {
	if err := ValidateRating(rating); err != nil {
		return api.ReviewInput{}, err
	}
	body, err := ValidateContent(content)
	if err != nil {
		return api.ReviewInput{}, err
	}
	return api.ReviewInput{Rating: rating, Content: body}, nil
}
