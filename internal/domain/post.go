package domain

import (
	"context"
	"time"
)

// Post is authored content. CircleID nil means the post is public;
// otherwise it belongs to that circle's timeline. AuthorUsername is
// denormalized for display.
type Post struct {
	ID             int64
	UserID         int64
	AuthorUsername string
	CircleID       *int64
	Title          string
	Content        string
	CreatedAt      time.Time
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	// ListFeed returns recent posts visible to the user: public posts plus
	// posts from circles the user belongs to, newest first.
	ListFeed(ctx context.Context, userID int64, limit, offset int) ([]Post, error)
	ListByCircle(ctx context.Context, circleID int64, limit, offset int) ([]Post, error)
	Delete(ctx context.Context, id int64) error
}
