package service

import (
	"context"
	"strings"

	"github.com/socialcircles/server/internal/domain"
)

// UserService exposes user lookups that back search and member-picking UI.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// Search returns users whose username contains the query, optionally
// excluding existing members of a circle. An empty query matches nothing.
func (s *UserService) Search(ctx context.Context, query string, excludeCircleID int64, limit int) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.users.SearchByUsername(ctx, query, excludeCircleID, limit)
}
