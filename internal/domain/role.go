package domain

import "fmt"

// Role is a member's standing within a circle, ranked owner > moderator >
// member. Unknown strings are rejected at parse time rather than compared
// ad hoc.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleModerator, RoleMember:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Capabilities is the permission set derived for a (circle, user) pair.
// The zero value is all-false, which doubles as the fail-closed default.
type Capabilities struct {
	IsOwner     bool
	IsModerator bool
	IsMember    bool

	CanModerate       bool
	CanManageMembers  bool
	CanChangeRoles    bool
	CanDeleteCircle   bool
	CanChangeSettings bool
}

// ComputeCapabilities derives the capability set for the requesting user
// within the circle. Missing circle, missing user, or no roster row all
// yield the all-false set. Pure: no I/O, no mutation.
func ComputeCapabilities(circle *Circle, user *User) Capabilities {
	if circle == nil || user == nil {
		return Capabilities{}
	}
	member, ok := circle.MemberByUserID(user.ID)
	if !ok {
		return Capabilities{}
	}
	return CapabilitiesForRole(member.Role)
}

// CapabilitiesForRole derives the capability set held by a roster row with
// the given role.
func CapabilitiesForRole(role Role) Capabilities {
	isOwner := role == RoleOwner
	isModerator := role == RoleModerator
	return Capabilities{
		IsOwner:           isOwner,
		IsModerator:       isModerator,
		IsMember:          isOwner || isModerator || role == RoleMember,
		CanModerate:       isOwner || isModerator,
		CanManageMembers:  isOwner || isModerator,
		CanChangeRoles:    isOwner,
		CanDeleteCircle:   isOwner,
		CanChangeSettings: isOwner,
	}
}

// CanManageMember is the row-level management rule: a requester may act on a
// target roster row (removal, offering a manage control at all) only if the
// target is not the owner, and the requester is the owner or a moderator
// acting on a plain member. Moderators never manage other moderators.
func CanManageMember(requester, target Role) bool {
	if target == RoleOwner {
		return false
	}
	return requester == RoleOwner || (requester == RoleModerator && target == RoleMember)
}

// AssignableRole validates a role-change target value. Owner is never
// assignable through role changes; ownership is fixed at circle creation.
func AssignableRole(s string) (Role, error) {
	role, err := ParseRole(s)
	if err != nil {
		return "", err
	}
	if role == RoleOwner {
		return "", fmt.Errorf("%w: owner is not assignable", ErrInvalidRole)
	}
	return role, nil
}
