package social

import (
	"context"
	"sync"

	"github.com/cinevibe/cinevibe/internal/api"
)

// fakeBackend is an in-memory stand-in for the CineVibe API. Fetches serve
// whatever the slices currently hold; writes mutate them.
type fakeBackend struct {
	mu          sync.Mutex
	movies      []api.Movie
	reviews     []api.Review
	comments    []api.Comment
	connections []api.Connection

	fetches   int
	writes    []string
	lastMedia api.MediaType
	failNext  error
}

func (f *fakeBackend) record(op string) error {
	f.writes = append(f.writes, op)
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	return nil
}

func page[T any](all []T, page, size int) api.Page[T] {
	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	items := append([]T(nil), all[start:end]...)
	return api.Page[T]{Items: items, Page: page, PageSize: size, Total: int64(len(all)), IsLast: end == len(all)}
}

func (f *fakeBackend) FetchMovies(ctx context.Context, media api.MediaType, p, size int) (api.Page[api.Movie], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	f.lastMedia = media
	var out []api.Movie
	for _, m := range f.movies {
		if media == "" || m.MediaType == media {
			out = append(out, m)
		}
	}
	return page(out, p, size), nil
}

func (f *fakeBackend) FetchMovieReviews(ctx context.Context, movieID int64, p, size int) (api.Page[api.Review], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	var out []api.Review
	for _, r := range f.reviews {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	return page(out, p, size), nil
}

func (f *fakeBackend) FetchUserReviews(ctx context.Context, userID string, p, size int) (api.Page[api.Review], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	var out []api.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return page(out, p, size), nil
}

func (f *fakeBackend) CreateReview(ctx context.Context, movieID int64, in api.ReviewInput) (api.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create-review"); err != nil {
		return api.Review{}, err
	}
	r := api.Review{ID: int64(len(f.reviews) + 100), MovieID: movieID, UserID: "me", Rating: in.Rating, Content: in.Content}
	f.reviews = append(f.reviews, r)
	return r, nil
}

func (f *fakeBackend) UpdateReview(ctx context.Context, id int64, in api.ReviewInput) (api.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update-review"); err != nil {
		return api.Review{}, err
	}
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews[i].Rating = in.Rating
			f.reviews[i].Content = in.Content
			return f.reviews[i], nil
		}
	}
	return api.Review{}, nil
}

func (f *fakeBackend) DeleteReview(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete-review"); err != nil {
		return err
	}
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) setReviewLike(id int64, liked bool) (api.LikeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "unlike-review"
	if liked {
		op = "like-review"
	}
	if err := f.record(op); err != nil {
		return api.LikeState{}, err
	}
	for i := range f.reviews {
		r := &f.reviews[i]
		if r.ID != id {
			continue
		}
		if r.UserHasLiked != liked {
			r.UserHasLiked = liked
			if liked {
				r.LikeCount += 2 // someone else liked it meanwhile
			} else {
				r.LikeCount--
			}
		}
		return api.LikeState{LikeCount: r.LikeCount, UserHasLiked: r.UserHasLiked}, nil
	}
	return api.LikeState{}, nil
}

func (f *fakeBackend) LikeReview(ctx context.Context, id int64) (api.LikeState, error) {
	return f.setReviewLike(id, true)
}

func (f *fakeBackend) UnlikeReview(ctx context.Context, id int64) (api.LikeState, error) {
	return f.setReviewLike(id, false)
}

func (f *fakeBackend) FetchComments(ctx context.Context, reviewID int64, p, size int) (api.Page[api.Comment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	var out []api.Comment
	for _, c := range f.comments {
		if c.ReviewID == reviewID {
			out = append(out, c)
		}
	}
	return page(out, p, size), nil
}

func (f *fakeBackend) CreateComment(ctx context.Context, reviewID int64, in api.CommentInput) (api.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create-comment"); err != nil {
		return api.Comment{}, err
	}
	c := api.Comment{ID: int64(len(f.comments) + 100), ReviewID: reviewID, UserID: "me", Content: in.Content}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeBackend) UpdateComment(ctx context.Context, id int64, in api.CommentInput) (api.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update-comment"); err != nil {
		return api.Comment{}, err
	}
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Content = in.Content
			return f.comments[i], nil
		}
	}
	return api.Comment{}, nil
}

func (f *fakeBackend) DeleteComment(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete-comment"); err != nil {
		return err
	}
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) setCommentLike(id int64, liked bool) (api.LikeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "unlike-comment"
	if liked {
		op = "like-comment"
	}
	if err := f.record(op); err != nil {
		return api.LikeState{}, err
	}
	for i := range f.comments {
		c := &f.comments[i]
		if c.ID != id {
			continue
		}
		if c.UserHasLiked != liked {
			c.UserHasLiked = liked
			if liked {
				c.LikeCount += 2
			} else {
				c.LikeCount--
			}
		}
		return api.LikeState{LikeCount: c.LikeCount, UserHasLiked: c.UserHasLiked}, nil
	}
	return api.LikeState{}, nil
}

func (f *fakeBackend) LikeComment(ctx context.Context, id int64) (api.LikeState, error) {
	return f.setCommentLike(id, true)
}

func (f *fakeBackend) UnlikeComment(ctx context.Context, id int64) (api.LikeState, error) {
	return f.setCommentLike(id, false)
}

func (f *fakeBackend) FetchConnections(ctx context.Context, userID string, kind api.ConnectionType, p, size int) (api.Page[api.Connection], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	var out []api.Connection
	for _, c := range f.connections {
		if c.Type == kind && !(kind == api.ConnectionPending && c.Status != api.StatusPending) {
			out = append(out, c)
		}
	}
	return page(out, p, size), nil
}

func (f *fakeBackend) setFollow(userID string, following bool) (api.FollowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "unfollow"
	if following {
		op = "follow"
	}
	if err := f.record(op + ":" + userID); err != nil {
		return api.FollowState{}, err
	}
	var state api.FollowState
	for i := range f.connections {
		c := &f.connections[i]
		if c.UserID != userID {
			continue
		}
		if c.IsFollowing != following {
			c.IsFollowing = following
			if following {
				c.FollowerCount++
			} else {
				c.FollowerCount--
			}
		}
		state = api.FollowState{IsFollowing: c.IsFollowing, FollowerCount: c.FollowerCount}
	}
	return state, nil
}

func (f *fakeBackend) Follow(ctx context.Context, userID string) (api.FollowState, error) {
	return f.setFollow(userID, true)
}

func (f *fakeBackend) Unfollow(ctx context.Context, userID string) (api.FollowState, error) {
	return f.setFollow(userID, false)
}

func (f *fakeBackend) setStatus(id string, status api.ConnectionStatus) (api.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(string(status) + ":" + id); err != nil {
		return api.Connection{}, err
	}
	for i := range f.connections {
		if f.connections[i].ID == id {
			f.connections[i].Status = status
			return f.connections[i], nil
		}
	}
	return api.Connection{}, nil
}

func (f *fakeBackend) AcceptConnection(ctx context.Context, id string) (api.Connection, error) {
	return f.setStatus(id, api.StatusAccepted)
}

func (f *fakeBackend) RejectConnection(ctx context.Context, id string) (api.Connection, error) {
	return f.setStatus(id, api.StatusRejected)
}

func (f *fakeBackend) writeLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

var (
	_ api.MovieReader       = (*fakeBackend)(nil)
	_ api.ReviewService     = (*fakeBackend)(nil)
	_ api.CommentService    = (*fakeBackend)(nil)
	_ api.ConnectionService = (*fakeBackend)(nil)
)
