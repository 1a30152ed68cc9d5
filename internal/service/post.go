package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/socialcircles/server/internal/domain"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// PostService owns post creation and visibility rules. Posts with a circle
// attached are visible to that circle's members only; posts without one are
// public.
type PostService struct {
	posts   domain.PostRepository
	circles domain.CircleRepository
}

// NewPostService creates a new PostService.
func NewPostService(posts domain.PostRepository, circles domain.CircleRepository) *PostService {
	return &PostService{posts: posts, circles: circles}
}

// Create makes a new post. Posting into a circle requires membership.
func (s *PostService) Create(ctx context.Context, authorID int64, title, content string, circleID *int64) (*domain.Post, error) {
	if n := utf8.RuneCountInString(title); n < 1 || n > 100 {
		return nil, fmt.Errorf("%w: title must be between 1 and 100 characters", domain.ErrInvalidInput)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content must not be empty", domain.ErrInvalidInput)
	}

	if circleID != nil {
		circle, err := s.circles.GetByID(ctx, *circleID)
		if err != nil {
			return nil, err
		}
		if _, ok := circle.MemberByUserID(authorID); !ok {
			return nil, domain.ErrForbidden
		}
	}

	post := &domain.Post{
		UserID:   authorID,
		CircleID: circleID,
		Title:    title,
		Content:  content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.posts.GetByID(ctx, post.ID)
}

// Feed returns recent posts from the user's circles plus public posts.
func (s *PostService) Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.posts.ListFeed(ctx, userID, limit, offset)
}

// CircleTimeline returns a circle's posts. Member-only.
func (s *PostService) CircleTimeline(ctx context.Context, requesterID, circleID int64, limit, offset int) ([]domain.Post, error) {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if _, ok := circle.MemberByUserID(requesterID); !ok {
		return nil, domain.ErrForbidden
	}
	limit, offset = clampPage(limit, offset)
	return s.posts.ListByCircle(ctx, circleID, limit, offset)
}

// Get returns a single post, enforcing circle membership for circle posts.
func (s *PostService) Get(ctx context.Context, requesterID, postID int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CircleID != nil {
		circle, err := s.circles.GetByID(ctx, *post.CircleID)
		if err != nil {
			return nil, err
		}
		if _, ok := circle.MemberByUserID(requesterID); !ok {
			return nil, domain.ErrForbidden
		}
	}
	return post, nil
}

// Delete removes a post. Allowed for the author, or for the owner of the
// circle the post lives in.
func (s *PostService) Delete(ctx context.Context, requesterID, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	allowed := post.UserID == requesterID
	if !allowed && post.CircleID != nil {
		circle, err := s.circles.GetByID(ctx, *post.CircleID)
		if err != nil {
			return err
		}
		member, ok := circle.MemberByUserID(requesterID)
		allowed = ok && domain.CapabilitiesForRole(member.Role).CanDeleteCircle
	}
	if !allowed {
		return domain.ErrForbidden
	}

	return s.posts.Delete(ctx, postID)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
