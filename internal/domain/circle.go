package domain

import (
	"context"
	"time"
)

// Circle is a named group with a membership roster. A circle always has
// exactly one member holding RoleOwner; it is created together with the
// circle and cannot be demoted or removed.
type Circle struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	Members     []Member
}

// Member is one row of a circle's roster: the (user, circle, role) relation.
// Username is denormalized for display.
type Member struct {
	CircleID int64
	UserID   int64
	Username string
	Role     Role
	JoinedAt time.Time
}

// MemberByUserID looks up the roster row for the given user.
func (c *Circle) MemberByUserID(userID int64) (Member, bool) {
	for _, m := range c.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// Owner returns the roster row holding RoleOwner.
func (c *Circle) Owner() (Member, bool) {
	for _, m := range c.Members {
		if m.Role == RoleOwner {
			return m, true
		}
	}
	return Member{}, false
}

// CircleRepository defines persistence operations for circles and their
// rosters. Reads return fresh snapshots; callers never mutate a returned
// roster in place.
type CircleRepository interface {
	// Create inserts the circle and its owner membership atomically.
	Create(ctx context.Context, circle *Circle, ownerID int64) error
	// GetByID loads a circle with its full roster.
	GetByID(ctx context.Context, id int64) (*Circle, error)
	ListByUser(ctx context.Context, userID int64) ([]Circle, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error

	AddMember(ctx context.Context, circleID, userID int64, role Role) (*Member, error)
	RemoveMember(ctx context.Context, circleID, userID int64) error
	UpdateMemberRole(ctx context.Context, circleID, userID int64, role Role) (*Member, error)
}
