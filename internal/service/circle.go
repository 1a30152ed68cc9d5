package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/socialcircles/server/internal/domain"
)

// CircleService owns circle and roster mutations. Every mutation is checked
// against the capability rules before touching storage; the client-side
// computation of the same rules is a hint, this is the enforcement point.
type CircleService struct {
	circles domain.CircleRepository
	users   domain.UserRepository
}

// NewCircleService creates a new CircleService.
func NewCircleService(circles domain.CircleRepository, users domain.UserRepository) *CircleService {
	return &CircleService{circles: circles, users: users}
}

// Create makes a new circle with the creator as its sole owner.
func (s *CircleService) Create(ctx context.Context, creatorID int64, name, description string) (*domain.Circle, error) {
	if err := ValidateCircleName(name); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(description) > 255 {
		return nil, fmt.Errorf("%w: description must be at most 255 characters", domain.ErrInvalidInput)
	}

	circle := &domain.Circle{Name: name, Description: description}
	if err := s.circles.Create(ctx, circle, creatorID); err != nil {
		return nil, fmt.Errorf("create circle: %w", err)
	}
	return s.circles.GetByID(ctx, circle.ID)
}

// Get loads a circle with its roster. Non-members are refused.
func (s *CircleService) Get(ctx context.Context, requesterID, circleID int64) (*domain.Circle, error) {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if _, ok := circle.MemberByUserID(requesterID); !ok {
		return nil, domain.ErrForbidden
	}
	return circle, nil
}

// ListMine returns the circles the user belongs to.
func (s *CircleService) ListMine(ctx context.Context, userID int64) ([]domain.Circle, error) {
	return s.circles.ListByUser(ctx, userID)
}

// AddMember adds a user to the circle with role member. Requires
// CanManageMembers (owner or moderator).
func (s *CircleService) AddMember(ctx context.Context, requesterID, circleID, targetUserID int64) (*domain.Member, error) {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	requester, ok := circle.MemberByUserID(requesterID)
	if !ok || !domain.CapabilitiesForRole(requester.Role).CanManageMembers {
		return nil, domain.ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get target user: %w", err)
	}

	return s.circles.AddMember(ctx, circleID, targetUserID, domain.RoleMember)
}

// RemoveMember removes a target from the roster under the row-level rule:
// the owner may remove anyone but themselves; a moderator may remove plain
// members only. The owner row is immovable.
func (s *CircleService) RemoveMember(ctx context.Context, requesterID, circleID, targetUserID int64) error {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return err
	}
	requester, ok := circle.MemberByUserID(requesterID)
	if !ok {
		return domain.ErrForbidden
	}
	target, ok := circle.MemberByUserID(targetUserID)
	if !ok {
		return domain.ErrNotFound
	}
	if !domain.CanManageMember(requester.Role, target.Role) {
		return domain.ErrForbidden
	}
	return s.circles.RemoveMember(ctx, circleID, targetUserID)
}

// ChangeRole sets a member's role to member or moderator. Owner-only, and
// the owner's own row can never be the target.
func (s *CircleService) ChangeRole(ctx context.Context, requesterID, circleID, targetUserID int64, roleValue string) (*domain.Member, error) {
	role, err := domain.AssignableRole(roleValue)
	if err != nil {
		return nil, err
	}

	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	requester, ok := circle.MemberByUserID(requesterID)
	if !ok || !domain.CapabilitiesForRole(requester.Role).CanChangeRoles {
		return nil, domain.ErrForbidden
	}
	target, ok := circle.MemberByUserID(targetUserID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if target.Role == domain.RoleOwner {
		return nil, domain.ErrForbidden
	}

	return s.circles.UpdateMemberRole(ctx, circleID, targetUserID, role)
}

// Rename changes the circle's name. Owner-only.
func (s *CircleService) Rename(ctx context.Context, requesterID, circleID int64, name string) (*domain.Circle, error) {
	if err := ValidateCircleName(name); err != nil {
		return nil, err
	}

	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	requester, ok := circle.MemberByUserID(requesterID)
	if !ok || !domain.CapabilitiesForRole(requester.Role).CanChangeSettings {
		return nil, domain.ErrForbidden
	}

	if err := s.circles.Rename(ctx, circleID, name); err != nil {
		return nil, err
	}
	return s.circles.GetByID(ctx, circleID)
}

// Delete removes the circle entirely. Owner-only.
func (s *CircleService) Delete(ctx context.Context, requesterID, circleID int64) error {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return err
	}
	requester, ok := circle.MemberByUserID(requesterID)
	if !ok || !domain.CapabilitiesForRole(requester.Role).CanDeleteCircle {
		return domain.ErrForbidden
	}
	return s.circles.Delete(ctx, circleID)
}

// ValidateCircleName enforces the 3–50 character circle name constraint.
func ValidateCircleName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 3 || n > 50 {
		return fmt.Errorf("%w: name must be between 3 and 50 characters", domain.ErrInvalidInput)
	}
	return nil
}
