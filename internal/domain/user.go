package domain

import (
	"context"
	"time"
)

// User represents a registered user of the application. Email and FullName
// are optional profile data; Username is the login identifier.
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// SearchByUsername returns users whose username contains query
	// (case-insensitive). When excludeCircleID > 0, users already in that
	// circle are omitted.
	SearchByUsername(ctx context.Context, query string, excludeCircleID int64, limit int) ([]User, error)
}
