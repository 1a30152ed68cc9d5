package client

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"sync"
	"unicode/utf8"

	"github.com/socialcircles/server/internal/domain"
)

// SessionState is the Session Manager's resolved position: Unknown only
// while the initial bootstrap is in flight, then Authenticated or Anonymous.
// Unknown is never re-entered.
type SessionState int

const (
	StateUnknown SessionState = iota
	StateAuthenticated
	StateAnonymous
)

// SessionManager is the single source of truth for "who is logged in". All
// state transitions are serialized under its mutex; the epoch counter orders
// completions so a stale in-flight bootstrap or login can never overwrite
// the outcome of a later explicit transition.
type SessionManager struct {
	api *Client

	mu      sync.Mutex
	user    *domain.User
	loading bool
	epoch   uint64
}

// NewSessionManager creates a manager in the Unknown state. Call Bootstrap
// once at startup to resolve it.
func NewSessionManager(api *Client) *SessionManager {
	return &SessionManager{api: api, loading: true}
}

// Bootstrap restores an existing session from the cookie store, if any. It
// never returns an error: a 401, a missing cookie, or a network failure all
// resolve to Anonymous. Startup connectivity problems are not worth alarming
// the user over.
func (m *SessionManager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	start := m.epoch
	m.mu.Unlock()

	var payload userPayload
	err := m.api.do(ctx, http.MethodGet, "/auth/me", nil, &payload)

	var user *domain.User
	if err == nil {
		user, err = payload.toDomain()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if m.epoch != start {
		// A login or logout resolved while we were in flight; its outcome
		// stands.
		return
	}
	if err == nil {
		m.user = user
	}
}

// Login authenticates with the server and, on success, transitions to
// Authenticated. On failure the returned *APIError carries the server's
// detail message (or a generic fallback) and local state is unchanged. A
// success that arrives after a later logout is discarded.
func (m *SessionManager) Login(ctx context.Context, username, password string) (*domain.User, error) {
	m.mu.Lock()
	start := m.epoch
	m.mu.Unlock()

	var payload loginPayload
	err := m.api.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &payload)
	if err != nil {
		return nil, apiFailure(err, "Login failed")
	}

	user, err := payload.User.toDomain()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if m.epoch != start {
		return user, nil
	}
	m.epoch++
	m.user = user
	return user, nil
}

// RegisterInput is the registration form. FullName and Email are optional.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    string
}

// Register creates an account. Input is validated locally first, so invalid
// form data never issues a network call. Registration does not log in.
func (m *SessionManager) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if n := utf8.RuneCountInString(input.Username); n < 3 || n > 50 {
		return nil, fmt.Errorf("%w: username must be between 3 and 50 characters", domain.ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
		}
	}

	var payload userPayload
	err := m.api.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username":  input.Username,
		"password":  input.Password,
		"full_name": input.FullName,
		"email":     input.Email,
	}, &payload)
	if err != nil {
		return nil, apiFailure(err, "Registration failed")
	}

	return payload.toDomain()
}

// Logout drops the local session immediately and asks the server to revoke
// it best-effort. It never fails: a client that cannot reach the server must
// still be able to log out locally. The epoch bump makes this outcome final
// against any in-flight bootstrap or login.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.epoch++
	m.user = nil
	m.loading = false
	m.mu.Unlock()

	// Best effort; the cookie-backed session dies server-side when this
	// succeeds, and local state is already Anonymous either way.
	_ = m.api.do(ctx, http.MethodPost, "/auth/logout", struct{}{}, nil)
}

// State reports the current session state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.loading:
		return StateUnknown
	case m.user != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *SessionManager) CurrentUser() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}
