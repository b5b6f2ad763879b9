package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MovieReader pages through the movie catalogue.
type MovieReader interface {
	FetchMovies(ctx context.Context, media MediaType, page, size int) (Page[Movie], error)
}

// ReviewService covers review listing and writes.
type ReviewService interface {
	FetchMovieReviews(ctx context.Context, movieID int64, page, size int) (Page[Review], error)
	FetchUserReviews(ctx context.Context, userID string, page, size int) (Page[Review], error)
	CreateReview(ctx context.Context, movieID int64, in ReviewInput) (Review, error)
	UpdateReview(ctx context.Context, reviewID int64, in ReviewInput) (Review, error)
	DeleteReview(ctx context.Context, reviewID int64) error
	LikeReview(ctx context.Context, reviewID int64) (LikeState, error)
	UnlikeReview(ctx context.Context, reviewID int64) (LikeState, error)
}

// CommentService covers comment listing and writes.
type CommentService interface {
	FetchComments(ctx context.Context, reviewID int64, page, size int) (Page[Comment], error)
	CreateComment(ctx context.Context, reviewID int64, in CommentInput) (Comment, error)
	UpdateComment(ctx context.Context, commentID int64, in CommentInput) (Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	LikeComment(ctx context.Context, commentID int64) (LikeState, error)
	UnlikeComment(ctx context.Context, commentID int64) (LikeState, error)
}

// ConnectionService covers follow relationships.
type ConnectionService interface {
	FetchConnections(ctx context.Context, userID string, kind ConnectionType, page, size int) (Page[Connection], error)
	Follow(ctx context.Context, userID string) (FollowState, error)
	Unfollow(ctx context.Context, userID string) (FollowState, error)
	AcceptConnection(ctx context.Context, connectionID string) (Connection, error)
	RejectConnection(ctx context.Context, connectionID string) (Connection, error)
}

// ProfileService reads and edits the signed-in user's profile.
type ProfileService interface {
	CurrentUser(ctx context.Context) (UserProfile, error)
	UpdateProfile(ctx context.Context, fields ProfileUpdate) (UserProfile, error)
}

// Ensure Client implements every service at compile time.
var (
	_ MovieReader       = (*Client)(nil)
	_ ReviewService     = (*Client)(nil)
	_ CommentService    = (*Client)(nil)
	_ ConnectionService = (*Client)(nil)
	_ ProfileService    = (*Client)(nil)
)

// FetchMovies lists movies, optionally filtered by media type.
func (c *Client) FetchMovies(ctx context.Context, media MediaType, page, size int) (Page[Movie], error) {
	values := pageQuery(page, size)
	if m := strings.TrimSpace(string(media)); m != "" {
		values.Set("media_type", m)
	}
	var payload Page[Movie]
	if err := c.get(ctx, "/api/movies", values, &payload); err != nil {
		return Page[Movie]{}, err
	}
	return payload, nil
}

// FetchMovieReviews lists reviews of one movie.
func (c *Client) FetchMovieReviews(ctx context.Context, movieID int64, page, size int) (Page[Review], error) {
	var payload Page[Review]
	path := "/api/movies/" + strconv.FormatInt(movieID, 10) + "/reviews"
	if err := c.get(ctx, path, pageQuery(page, size), &payload); err != nil {
		return Page[Review]{}, err
	}
	return payload, nil
}

// FetchUserReviews lists reviews written by one user.
func (c *Client) FetchUserReviews(ctx context.Context, userID string, page, size int) (Page[Review], error) {
	if strings.TrimSpace(userID) == "" {
		return Page[Review]{}, fmt.Errorf("user id required")
	}
	var payload Page[Review]
	path := "/api/users/" + url.PathEscape(userID) + "/reviews"
	if err := c.get(ctx, path, pageQuery(page, size), &payload); err != nil {
		return Page[Review]{}, err
	}
	return payload, nil
}

// FetchComments lists comments on one review.
func (c *Client) FetchComments(ctx context.Context, reviewID int64, page, size int) (Page[Comment], error) {
	var payload Page[Comment]
	path := "/api/reviews/" + strconv.FormatInt(reviewID, 10) + "/comments"
	if err := c.get(ctx, path, pageQuery(page, size), &payload); err != nil {
		return Page[Comment]{}, err
	}
	return payload, nil
}

// FetchConnections lists followers, followings or pending requests of a user.
func (c *Client) FetchConnections(ctx context.Context, userID string, kind ConnectionType, page, size int) (Page[Connection], error) {
	if strings.TrimSpace(userID) == "" {
		return Page[Connection]{}, fmt.Errorf("user id required")
	}
	values := pageQuery(page, size)
	values.Set("type", string(kind))
	var payload Page[Connection]
	path := "/api/users/" + url.PathEscape(userID) + "/connections"
	if err := c.get(ctx, path, values, &payload); err != nil {
		return Page[Connection]{}, err
	}
	return payload, nil
}

func (c *Client) CreateReview(ctx context.Context, movieID int64, in ReviewInput) (Review, error) {
	var out Review
	path := "/api/movies/" + strconv.FormatInt(movieID, 10) + "/reviews"
	err := c.send(ctx, http.MethodPost, path, in, &out)
	return out, err
}

func (c *Client) UpdateReview(ctx context.Context, reviewID int64, in ReviewInput) (Review, error) {
	var out Review
	err := c.send(ctx, http.MethodPut, reviewPath(reviewID), in, &out)
	return out, err
}

func (c *Client) DeleteReview(ctx context.Context, reviewID int64) error {
	return c.send(ctx, http.MethodDelete, reviewPath(reviewID), nil, nil)
}

func (c *Client) LikeReview(ctx context.Context, reviewID int64) (LikeState, error) {
	var out LikeState
	err := c.send(ctx, http.MethodPost, reviewPath(reviewID)+"/like", nil, &out)
	return out, err
}

func (c *Client) UnlikeReview(ctx context.Context, reviewID int64) (LikeState, error) {
	var out LikeState
	err := c.send(ctx, http.MethodDelete, reviewPath(reviewID)+"/like", nil, &out)
	return out, err
}

func (c *Client) CreateComment(ctx context.Context, reviewID int64, in CommentInput) (Comment, error) {
	var out Comment
	err := c.send(ctx, http.MethodPost, reviewPath(reviewID)+"/comments", in, &out)
	return out, err
}

func (c *Client) UpdateComment(ctx context.Context, commentID int64, in CommentInput) (Comment, error) {
	var out Comment
	err := c.send(ctx, http.MethodPut, commentPath(commentID), in, &out)
	return out, err
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.send(ctx, http.MethodDelete, commentPath(commentID), nil, nil)
}

func (c *Client) LikeComment(ctx context.Context, commentID int64) (LikeState, error) {
	var out LikeState
	err := c.send(ctx, http.MethodPost, commentPath(commentID)+"/like", nil, &out)
	return out, err
}

func (c *Client) UnlikeComment(ctx context.Context, commentID int64) (LikeState, error) {
	var out LikeState
	err := c.send(ctx, http.MethodDelete, commentPath(commentID)+"/like", nil, &out)
	return out, err
}

func (c *Client) Follow(ctx context.Context, userID string) (FollowState, error) {
	var out FollowState
	err := c.send(ctx, http.MethodPost, "/api/users/"+url.PathEscape(userID)+"/follow", nil, &out)
	return out, err
}

func (c *Client) Unfollow(ctx context.Context, userID string) (FollowState, error) {
	var out FollowState
	err := c.send(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(userID)+"/follow", nil, &out)
	return out, err
}

func (c *Client) AcceptConnection(ctx context.Context, connectionID string) (Connection, error) {
	var out Connection
	err := c.send(ctx, http.MethodPost, "/api/connections/"+url.PathEscape(connectionID)+"/accept", nil, &out)
	return out, err
}

func (c *Client) RejectConnection(ctx context.Context, connectionID string) (Connection, error) {
	var out Connection
	err := c.send(ctx, http.MethodPost, "/api/connections/"+url.PathEscape(connectionID)+"/reject", nil, &out)
	return out, err
}

// CurrentUser fetches the signed-in user's profile.
func (c *Client) CurrentUser(ctx context.Context) (UserProfile, error) {
	var out UserProfile
	if err := c.get(ctx, "/api/me", nil, &out); err != nil {
		return UserProfile{}, err
	}
	return out, nil
}

// UpdateProfile patches the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, fields ProfileUpdate) (UserProfile, error) {
	var out UserProfile
	if err := c.send(ctx, http.MethodPatch, "/api/me", fields, &out); err != nil {
		return UserProfile{}, err
	}
	return out, nil
}

func pageQuery(page, size int) url.Values {
	values := url.Values{}
	if page < 0 {
		page = 0
	}
	values.Set("page", strconv.Itoa(page))
	if size > 0 {
		values.Set("page_size", strconv.Itoa(size))
	}
	return values
}

func reviewPath(id int64) string  { return "/api/reviews/" + strconv.FormatInt(id, 10) }
func commentPath(id int64) string { return "/api/comments/" + strconv.FormatInt(id, 10) }
