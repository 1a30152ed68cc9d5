package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/socialcircles/server/internal/domain"
)

// CircleClient manages one circle's roster from the client side. It holds an
// immutable snapshot: mutations build a new roster and swap it in wholesale,
// so concurrent readers never observe a half-updated one. The capability
// computations here are UI hints; the server re-checks every mutation and a
// 403 means the action did not happen — the snapshot is left untouched.
type CircleClient struct {
	api *Client

	// confirm gates member removal. Removal is never dispatched without an
	// affirmative answer.
	confirm func(prompt string) bool

	mu     sync.Mutex
	circle *domain.Circle
}

// NewCircleClient creates a circle client. confirm is required for
// RemoveMember; a nil confirm refuses all removals.
func NewCircleClient(api *Client, confirm func(prompt string) bool) *CircleClient {
	return &CircleClient{api: api, confirm: confirm}
}

// Load fetches the circle and its roster and makes it the current snapshot.
func (c *CircleClient) Load(ctx context.Context, circleID int64) (*domain.Circle, error) {
	var payload circlePayload
	if err := c.api.do(ctx, http.MethodGet, fmt.Sprintf("/circles/%d", circleID), nil, &payload); err != nil {
		return nil, apiFailure(err, "Could not load circle")
	}
	circle, err := payload.toDomain()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.circle = circle
	c.mu.Unlock()
	return c.Snapshot(), nil
}

// Snapshot returns a copy of the current circle, or nil before Load.
func (c *CircleClient) Snapshot() *domain.Circle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyCircle(c.circle)
}

// Capabilities computes the capability hint set for the given user against
// the current snapshot. Fail-closed: no snapshot, nil user, or no roster row
// all yield the all-false set.
func (c *CircleClient) Capabilities(user *domain.User) domain.Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.ComputeCapabilities(c.circle, user)
}

// CanManage reports whether a manage control should be offered to user for
// the target roster row. The owner row is never manageable.
func (c *CircleClient) CanManage(user *domain.User, target domain.Member) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.circle == nil || user == nil {
		return false
	}
	requester, ok := c.circle.MemberByUserID(user.ID)
	if !ok {
		return false
	}
	return domain.CanManageMember(requester.Role, target.Role)
}

// AddMember adds a user to the roster and appends the new row to a fresh
// snapshot.
func (c *CircleClient) AddMember(ctx context.Context, userID int64) (*domain.Member, error) {
	circleID, err := c.loadedCircleID()
	if err != nil {
		return nil, err
	}

	var payload memberPayload
	err = c.api.do(ctx, http.MethodPost, fmt.Sprintf("/circles/%d/members", circleID),
		map[string]int64{"user_id": userID}, &payload)
	if err != nil {
		return nil, apiFailure(err, "Could not add member")
	}
	member, err := payload.toDomain(circleID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := copyCircle(c.circle)
	next.Members = append(next.Members, member)
	c.circle = next
	return &member, nil
}

// RemoveMember removes a member after the confirmation gate. It returns
// false with a nil error when the user declined; no request is sent in that
// case, nor for the owner row, which is immovable.
func (c *CircleClient) RemoveMember(ctx context.Context, userID int64) (bool, error) {
	c.mu.Lock()
	if c.circle == nil {
		c.mu.Unlock()
		return false, fmt.Errorf("no circle loaded")
	}
	circleID := c.circle.ID
	target, ok := c.circle.MemberByUserID(userID)
	c.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("user %d is not a member", userID)
	}
	if target.Role == domain.RoleOwner {
		return false, fmt.Errorf("%w: the owner cannot be removed", domain.ErrForbidden)
	}

	if c.confirm == nil || !c.confirm(fmt.Sprintf("Remove %s from circle?", target.Username)) {
		return false, nil
	}

	err := c.api.do(ctx, http.MethodDelete, fmt.Sprintf("/circles/%d/members/%d", circleID, userID), nil, nil)
	if err != nil {
		return false, apiFailure(err, "Could not remove member")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := copyCircle(c.circle)
	members := next.Members[:0:0]
	for _, m := range next.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	next.Members = members
	c.circle = next
	return true, nil
}

// ChangeRole sets a member's role to member or moderator and replaces the
// row in a fresh snapshot. The owner row is never a valid target.
func (c *CircleClient) ChangeRole(ctx context.Context, userID int64, role domain.Role) (*domain.Member, error) {
	if role != domain.RoleMember && role != domain.RoleModerator {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	c.mu.Lock()
	if c.circle == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("no circle loaded")
	}
	circleID := c.circle.ID
	target, ok := c.circle.MemberByUserID(userID)
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("user %d is not a member", userID)
	}
	if target.Role == domain.RoleOwner {
		return nil, fmt.Errorf("%w: the owner's role cannot change", domain.ErrForbidden)
	}

	var payload memberPayload
	err := c.api.do(ctx, http.MethodPut, fmt.Sprintf("/circles/%d/members/%d/role", circleID, userID),
		map[string]string{"role": string(role)}, &payload)
	if err != nil {
		return nil, apiFailure(err, "Could not change role")
	}
	member, err := payload.toDomain(circleID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := copyCircle(c.circle)
	for i := range next.Members {
		if next.Members[i].UserID == userID {
			next.Members[i] = member
		}
	}
	c.circle = next
	return &member, nil
}

// Rename changes the circle's name. Renaming to the current name is a no-op
// that performs no network request and returns the unchanged snapshot.
func (c *CircleClient) Rename(ctx context.Context, newName string) (*domain.Circle, error) {
	if n := utf8.RuneCountInString(newName); n < 3 || n > 50 {
		return nil, fmt.Errorf("%w: name must be between 3 and 50 characters", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	if c.circle == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("no circle loaded")
	}
	circleID := c.circle.ID
	current := c.circle.Name
	c.mu.Unlock()

	if newName == current {
		return c.Snapshot(), nil
	}

	var payload circlePayload
	err := c.api.do(ctx, http.MethodPut, fmt.Sprintf("/circles/%d/name", circleID),
		map[string]string{"name": newName}, &payload)
	if err != nil {
		return nil, apiFailure(err, "Could not rename circle")
	}
	circle, err := payload.toDomain()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.circle = circle
	c.mu.Unlock()
	return c.Snapshot(), nil
}

func (c *CircleClient) loadedCircleID() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.circle == nil {
		return 0, fmt.Errorf("no circle loaded")
	}
	return c.circle.ID, nil
}

// copyCircle clones a circle with its roster slice so snapshots are never
// shared mutable state.
func copyCircle(circle *domain.Circle) *domain.Circle {
	if circle == nil {
		return nil
	}
	next := *circle
	next.Members = make([]domain.Member, len(circle.Members))
	copy(next.Members, circle.Members)
	return &next
}
