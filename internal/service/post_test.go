package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/socialcircles/server/internal/domain"
	"github.com/socialcircles/server/internal/service"
)

func newPostFixture(t *testing.T) (*service.PostService, *service.CircleService, map[string]*domain.User, *domain.Circle) {
	t.Helper()
	db := newTestDB(t)
	auth := service.NewAuthService(db.Users(), db.Sessions(), testJWTSecret, 4, 24*time.Hour)
	circles := service.NewCircleService(db.Circles(), db.Users())
	posts := service.NewPostService(db.Posts(), db.Circles())
	ctx := context.Background()

	users := make(map[string]*domain.User)
	for _, name := range []string{"alice", "bob", "dave"} {
		user, err := auth.Register(ctx, name, "password123", "", "")
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		users[name] = user
	}

	circle, err := circles.Create(ctx, users["alice"].ID, "Readers", "")
	if err != nil {
		t.Fatalf("create circle: %v", err)
	}
	if _, err := circles.AddMember(ctx, users["alice"].ID, circle.ID, users["bob"].ID); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	return posts, circles, users, circle
}

func TestPostService_Create_Public(t *testing.T) {
	posts, _, users, _ := newPostFixture(t)

	post, err := posts.Create(context.Background(), users["dave"].ID, "Hello", "first post", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.CircleID != nil {
		t.Fatalf("expected public post, got circle %d", *post.CircleID)
	}
	if post.AuthorUsername != "dave" {
		t.Fatalf("expected author dave, got %s", post.AuthorUsername)
	}
}

func TestPostService_Create_CircleRequiresMembership(t *testing.T) {
	posts, _, users, circle := newPostFixture(t)
	ctx := context.Background()

	_, err := posts.Create(ctx, users["dave"].ID, "Sneaky", "content", &circle.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-member, got %v", err)
	}

	post, err := posts.Create(ctx, users["bob"].ID, "In circle", "content", &circle.ID)
	if err != nil {
		t.Fatalf("member post: %v", err)
	}
	if post.CircleID == nil || *post.CircleID != circle.ID {
		t.Fatalf("expected circle %d, got %+v", circle.ID, post.CircleID)
	}
}

func TestPostService_Create_Validation(t *testing.T) {
	posts, _, users, _ := newPostFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"empty title", "", "content"},
		{"long title", strings.Repeat("t", 101), "content"},
		{"empty content", "Title", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := posts.Create(ctx, users["alice"].ID, tc.title, tc.content, nil)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPostService_Feed_Visibility(t *testing.T) {
	posts, _, users, circle := newPostFixture(t)
	ctx := context.Background()

	if _, err := posts.Create(ctx, users["alice"].ID, "Circle only", "secret", &circle.ID); err != nil {
		t.Fatalf("circle post: %v", err)
	}
	if _, err := posts.Create(ctx, users["dave"].ID, "Public", "for everyone", nil); err != nil {
		t.Fatalf("public post: %v", err)
	}

	// A member sees both.
	feed, err := posts.Feed(ctx, users["bob"].ID, 0, 0)
	if err != nil {
		t.Fatalf("member feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 posts for member, got %d", len(feed))
	}

	// An outsider sees only the public post.
	feed, err = posts.Feed(ctx, users["dave"].ID, 0, 0)
	if err != nil {
		t.Fatalf("outsider feed: %v", err)
	}
	if len(feed) != 1 || feed[0].Title != "Public" {
		t.Fatalf("expected only the public post, got %+v", feed)
	}
}

func TestPostService_CircleTimeline_MemberOnly(t *testing.T) {
	posts, _, users, circle := newPostFixture(t)
	ctx := context.Background()

	if _, err := posts.Create(ctx, users["alice"].ID, "Circle post", "content", &circle.ID); err != nil {
		t.Fatalf("circle post: %v", err)
	}

	_, err := posts.CircleTimeline(ctx, users["dave"].ID, circle.ID, 0, 0)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-member, got %v", err)
	}

	timeline, err := posts.CircleTimeline(ctx, users["bob"].ID, circle.ID, 0, 0)
	if err != nil {
		t.Fatalf("member timeline: %v", err)
	}
	if len(timeline) != 1 {
		t.Fatalf("expected 1 post, got %d", len(timeline))
	}
}

func TestPostService_Get_CirclePostHidden(t *testing.T) {
	posts, _, users, circle := newPostFixture(t)
	ctx := context.Background()

	post, err := posts.Create(ctx, users["alice"].ID, "Hidden", "content", &circle.ID)
	if err != nil {
		t.Fatalf("circle post: %v", err)
	}

	if _, err := posts.Get(ctx, users["dave"].ID, post.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := posts.Get(ctx, users["bob"].ID, post.ID); err != nil {
		t.Fatalf("member get: %v", err)
	}
}

func TestPostService_Delete_AuthorOrCircleOwner(t *testing.T) {
	posts, _, users, circle := newPostFixture(t)
	ctx := context.Background()

	post, err := posts.Create(ctx, users["bob"].ID, "Bob's post", "content", &circle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A stranger (and even another member) cannot delete.
	if err := posts.Delete(ctx, users["dave"].ID, post.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger delete: expected ErrForbidden, got %v", err)
	}

	// The circle owner can delete a member's post.
	if err := posts.Delete(ctx, users["alice"].ID, post.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	// The author can delete their own.
	post, err = posts.Create(ctx, users["bob"].ID, "Another", "content", &circle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := posts.Delete(ctx, users["bob"].ID, post.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}

	if _, err := posts.Get(ctx, users["bob"].ID, post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
