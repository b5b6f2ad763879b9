package api

import "time"

// Page is one page of a paged listing endpoint.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	IsLast   bool  `json:"is_last"`
}

// MediaType distinguishes movies from series.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Movie is a browseable title.
type Movie struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	MediaType     MediaType `json:"media_type"`
	Year          int       `json:"year"`
	Overview      string    `json:"overview"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int64     `json:"review_count"`
}

// Review is a user's rating and write-up of a movie.
type Review struct {
	ID           int64     `json:"id"`
	MovieID      int64     `json:"movie_id"`
	MovieTitle   string    `json:"movie_title,omitempty"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content"`
	LikeCount    int64     `json:"like_count"`
	UserHasLiked bool      `json:"user_has_liked"`
	CommentCount int64     `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comment is a reply on a review.
type Comment struct {
	ID           int64     `json:"id"`
	ReviewID     int64     `json:"review_id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Content      string    `json:"content"`
	LikeCount    int64     `json:"like_count"`
	UserHasLiked bool      `json:"user_has_liked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConnectionType selects which relationship list to page through.
type ConnectionType string

const (
	ConnectionFollowers ConnectionType = "followers"
	ConnectionFollowing ConnectionType = "following"
	ConnectionPending   ConnectionType = "pending"
)

// ConnectionStatus is the state of a follow relationship.
type ConnectionStatus string

const (
	StatusPending  ConnectionStatus = "pending"
	StatusAccepted ConnectionStatus = "accepted"
	StatusRejected ConnectionStatus = "rejected"
)

// Connection is one row of a followers/following/pending list. ID is the
// relationship id; UserID is the other party.
type Connection struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Username      string           `json:"username"`
	DisplayName   string           `json:"display_name"`
	Type          ConnectionType   `json:"type"`
	Status        ConnectionStatus `json:"status"`
	IsFollowing   bool             `json:"is_following"`
	FollowerCount int64            `json:"follower_count"`
	CreatedAt     time.Time        `json:"created_at"`
}

// UserProfile is the signed-in user's profile.
type UserProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio"`
	IsPrivate      bool   `json:"is_private"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	ReviewCount    int64  `json:"review_count"`
}

// ProfileUpdate holds the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

// LikeState is the authoritative like flag and counter after a like/unlike.
type LikeState struct {
	LikeCount    int64 `json:"like_count"`
	UserHasLiked bool  `json:"user_has_liked"`
}

// FollowState is the authoritative follow flag and counter after a follow/unfollow.
type FollowState struct {
	IsFollowing   bool  `json:"is_following"`
	FollowerCount int64 `json:"follower_count"`
}

// ReviewInput is the body for creating or editing a review.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// CommentInput is the body for creating or editing a comment.
type CommentInput struct {
	Content string `json:"content"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
