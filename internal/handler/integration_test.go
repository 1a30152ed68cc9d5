package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/socialcircles/server/internal/handler"
	"github.com/socialcircles/server/internal/repository/sqlite"
	"github.com/socialcircles/server/internal/service"
)

const testJWTSecret = "integration-test-secret"

// newTestServer wires the full HTTP stack against a temp-file database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), db.Sessions(), testJWTSecret, 4, 24*time.Hour)
	circles := service.NewCircleService(db.Circles(), db.Users())
	posts := service.NewPostService(db.Posts(), db.Circles())
	users := service.NewUserService(db.Users())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, circles, posts, users, nil, false)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient returns an HTTP client with a cookie jar, standing in for a
// browser holding the session cookie.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func mustStatus(t *testing.T, resp *http.Response, body []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: got %d, want %d (body: %s)",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func register(t *testing.T, client *http.Client, base, username string) int64 {
	t.Helper()
	resp, body := doJSON(t, client, http.MethodPost, base+"/api/auth/register", map[string]string{
		"username": username,
		"password": "password123",
	})
	mustStatus(t, resp, body, http.StatusCreated)
	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	return user.ID
}

func login(t *testing.T, client *http.Client, base, username string) {
	t.Helper()
	resp, body := doJSON(t, client, http.MethodPost, base+"/api/auth/login", map[string]string{
		"username": username,
		"password": "password123",
	})
	mustStatus(t, resp, body, http.StatusOK)
}

func TestAuthJourney(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t)

	// Protected routes reject anonymous requests.
	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil)
	mustStatus(t, resp, body, http.StatusUnauthorized)

	register(t, client, srv.URL, "journeyuser")

	// Registration does not establish a session.
	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil)
	mustStatus(t, resp, body, http.StatusUnauthorized)

	resp, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"username": "journeyuser",
		"password": "password123",
	})
	mustStatus(t, resp, body, http.StatusOK)
	var loginResp struct {
		Success bool `json:"success"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &loginResp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if !loginResp.Success || loginResp.User.Username != "journeyuser" {
		t.Fatalf("unexpected login response: %s", body)
	}

	// The cookie jar now carries the session.
	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil)
	mustStatus(t, resp, body, http.StatusOK)

	resp, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/logout", nil)
	mustStatus(t, resp, body, http.StatusOK)

	// The session is revoked server-side, not just cleared client-side.
	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil)
	mustStatus(t, resp, body, http.StatusUnauthorized)
}

func TestLoginFailureDetail(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t)

	register(t, client, srv.URL, "failuser")

	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"username": "failuser",
		"password": "wrongpassword",
	})
	mustStatus(t, resp, body, http.StatusUnauthorized)

	var errResp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Detail != "Invalid credentials" {
		t.Fatalf("expected detail %q, got %q", "Invalid credentials", errResp.Detail)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t)

	register(t, client, srv.URL, "dupname")

	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/register", map[string]string{
		"username": "dupname",
		"password": "password123",
	})
	mustStatus(t, resp, body, http.StatusConflict)
}

func TestCircleJourney(t *testing.T) {
	srv := newTestServer(t)

	owner := newTestClient(t)
	member := newTestClient(t)
	outsider := newTestClient(t)

	register(t, owner, srv.URL, "circleowner")
	memberID := register(t, member, srv.URL, "circlemember")
	register(t, outsider, srv.URL, "outsider")
	login(t, owner, srv.URL, "circleowner")
	login(t, member, srv.URL, "circlemember")
	login(t, outsider, srv.URL, "outsider")

	// Owner creates a circle.
	resp, body := doJSON(t, owner, http.MethodPost, srv.URL+"/api/circles", map[string]string{
		"name":        "Book Club",
		"description": "weekly reads",
	})
	mustStatus(t, resp, body, http.StatusCreated)
	var circle struct {
		ID      int64 `json:"id"`
		Members []struct {
			UserID int64  `json:"user_id"`
			Role   string `json:"role"`
		} `json:"members"`
	}
	if err := json.Unmarshal(body, &circle); err != nil {
		t.Fatalf("decode circle: %v", err)
	}
	if len(circle.Members) != 1 || circle.Members[0].Role != "owner" {
		t.Fatalf("expected sole owner roster, got %s", body)
	}

	circleURL := fmt.Sprintf("%s/api/circles/%d", srv.URL, circle.ID)

	// An outsider cannot see the circle.
	resp, body = doJSON(t, outsider, http.MethodGet, circleURL, nil)
	mustStatus(t, resp, body, http.StatusForbidden)

	// Owner adds the member.
	resp, body = doJSON(t, owner, http.MethodPost, circleURL+"/members", map[string]int64{
		"user_id": memberID,
	})
	mustStatus(t, resp, body, http.StatusCreated)

	// The member can now see it, but cannot rename it.
	resp, body = doJSON(t, member, http.MethodGet, circleURL, nil)
	mustStatus(t, resp, body, http.StatusOK)
	resp, body = doJSON(t, member, http.MethodPut, circleURL+"/name", map[string]string{
		"name": "Hijacked",
	})
	mustStatus(t, resp, body, http.StatusForbidden)

	// Owner promotes the member to moderator.
	roleURL := fmt.Sprintf("%s/members/%d/role", circleURL, memberID)
	resp, body = doJSON(t, owner, http.MethodPut, roleURL, map[string]string{"role": "moderator"})
	mustStatus(t, resp, body, http.StatusOK)
	var promoted struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(body, &promoted); err != nil {
		t.Fatalf("decode member: %v", err)
	}
	if promoted.Role != "moderator" {
		t.Fatalf("expected moderator, got %s", promoted.Role)
	}

	// A moderator still cannot change roles.
	resp, body = doJSON(t, member, http.MethodPut, roleURL, map[string]string{"role": "member"})
	mustStatus(t, resp, body, http.StatusForbidden)

	// Assigning owner is rejected outright.
	resp, body = doJSON(t, owner, http.MethodPut, roleURL, map[string]string{"role": "owner"})
	mustStatus(t, resp, body, http.StatusBadRequest)

	// Owner renames and then removes the member.
	resp, body = doJSON(t, owner, http.MethodPut, circleURL+"/name", map[string]string{
		"name": "Renamed Club",
	})
	mustStatus(t, resp, body, http.StatusOK)

	resp, body = doJSON(t, owner, http.MethodDelete,
		fmt.Sprintf("%s/members/%d", circleURL, memberID), nil)
	mustStatus(t, resp, body, http.StatusNoContent)

	// The removed member is locked out again.
	resp, body = doJSON(t, member, http.MethodGet, circleURL, nil)
	mustStatus(t, resp, body, http.StatusForbidden)

	// Only the owner can delete the circle.
	resp, body = doJSON(t, outsider, http.MethodDelete, circleURL, nil)
	mustStatus(t, resp, body, http.StatusForbidden)
	resp, body = doJSON(t, owner, http.MethodDelete, circleURL, nil)
	mustStatus(t, resp, body, http.StatusNoContent)
}

func TestPostJourney(t *testing.T) {
	srv := newTestServer(t)

	author := newTestClient(t)
	outsider := newTestClient(t)
	register(t, author, srv.URL, "author")
	register(t, outsider, srv.URL, "lurker")
	login(t, author, srv.URL, "author")
	login(t, outsider, srv.URL, "lurker")

	resp, body := doJSON(t, author, http.MethodPost, srv.URL+"/api/circles", map[string]string{
		"name": "Private Circle",
	})
	mustStatus(t, resp, body, http.StatusCreated)
	var circle struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &circle); err != nil {
		t.Fatalf("decode circle: %v", err)
	}

	resp, body = doJSON(t, author, http.MethodPost, srv.URL+"/api/posts", map[string]any{
		"title":     "Circle post",
		"content":   "members only",
		"circle_id": circle.ID,
	})
	mustStatus(t, resp, body, http.StatusCreated)
	var post struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}

	postURL := fmt.Sprintf("%s/api/posts/%d", srv.URL, post.ID)

	// Circle posts are hidden from non-members.
	resp, body = doJSON(t, outsider, http.MethodGet, postURL, nil)
	mustStatus(t, resp, body, http.StatusForbidden)
	resp, body = doJSON(t, author, http.MethodGet, postURL, nil)
	mustStatus(t, resp, body, http.StatusOK)

	// Non-members cannot post into the circle.
	resp, body = doJSON(t, outsider, http.MethodPost, srv.URL+"/api/posts", map[string]any{
		"title":     "Intrusion",
		"content":   "should fail",
		"circle_id": circle.ID,
	})
	mustStatus(t, resp, body, http.StatusForbidden)

	// The outsider's feed carries public posts only.
	resp, body = doJSON(t, outsider, http.MethodPost, srv.URL+"/api/posts", map[string]any{
		"title":   "Public post",
		"content": "anyone",
	})
	mustStatus(t, resp, body, http.StatusCreated)

	resp, body = doJSON(t, outsider, http.MethodGet, srv.URL+"/api/posts/feed", nil)
	mustStatus(t, resp, body, http.StatusOK)
	var feed []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed) != 1 || feed[0].Title != "Public post" {
		t.Fatalf("expected only the public post, got %s", body)
	}
}

func TestUserSearch(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t)

	register(t, client, srv.URL, "searcher")
	register(t, client, srv.URL, "findme")
	register(t, client, srv.URL, "findmetoo")
	login(t, client, srv.URL, "searcher")

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/users/search?query=findme", nil)
	mustStatus(t, resp, body, http.StatusOK)
	var users []struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 matches, got %s", body)
	}
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t)

	register(t, client, srv.URL, "dashuser")
	login(t, client, srv.URL, "dashuser")

	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/circles", map[string]string{
		"name": "Dash Circle",
	})
	mustStatus(t, resp, body, http.StatusCreated)

	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboard", nil)
	mustStatus(t, resp, body, http.StatusOK)
	var dash struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Circles []struct {
			Name string `json:"name"`
		} `json:"circles"`
	}
	if err := json.Unmarshal(body, &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.User.Username != "dashuser" || len(dash.Circles) != 1 {
		t.Fatalf("unexpected dashboard: %s", body)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t)

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/healthz", nil)
	mustStatus(t, resp, body, http.StatusOK)
}

func TestLoginRateLimit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), db.Sessions(), testJWTSecret, 4, 24*time.Hour)
	circles := service.NewCircleService(db.Circles(), db.Users())
	posts := service.NewPostService(db.Posts(), db.Circles())
	users := service.NewUserService(db.Users())

	mux := http.NewServeMux()
	// Tiny bucket: two attempts, then limited.
	handler.RegisterRoutes(mux, auth, circles, posts, users, service.NewTokenBucket(0.001, 2), false)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(t)
	register(t, client, srv.URL, "limited")

	creds := map[string]string{"username": "limited", "password": "wrongpassword"}
	for i := 0; i < 2; i++ {
		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", creds)
		mustStatus(t, resp, body, http.StatusUnauthorized)
	}
	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", creds)
	mustStatus(t, resp, body, http.StatusTooManyRequests)
}
