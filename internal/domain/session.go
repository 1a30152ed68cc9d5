package domain

import (
	"context"
	"time"
)

// Session is a server-issued login session. The row is the revocation
// anchor: the credential handed to the client carries the session ID, and
// deleting the row invalidates the credential no matter how long its
// signature would otherwise remain valid.
type Session struct {
	ID        string // uuid
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionRepository defines persistence operations for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes all sessions whose expiry is at or before now
	// and returns the number removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
