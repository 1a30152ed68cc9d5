package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/socialcircles/server/internal/domain"
)

// ErrMalformedPayload marks a server response that failed boundary
// validation. Malformed data never enters the client's data model.
var ErrMalformedPayload = errors.New("malformed server payload")

type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
}

func (p *userPayload) toDomain() (*domain.User, error) {
	if p.ID <= 0 || p.Username == "" {
		return nil, fmt.Errorf("%w: user missing id or username", ErrMalformedPayload)
	}
	createdAt, _ := time.Parse(time.RFC3339, p.CreatedAt)
	return &domain.User{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		FullName:  p.FullName,
		CreatedAt: createdAt,
	}, nil
}

type memberPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

func (p *memberPayload) toDomain(circleID int64) (domain.Member, error) {
	if p.UserID <= 0 {
		return domain.Member{}, fmt.Errorf("%w: member missing user_id", ErrMalformedPayload)
	}
	role, err := domain.ParseRole(p.Role)
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: member %d: %v", ErrMalformedPayload, p.UserID, err)
	}
	joinedAt, _ := time.Parse(time.RFC3339, p.JoinedAt)
	return domain.Member{
		CircleID: circleID,
		UserID:   p.UserID,
		Username: p.Username,
		Role:     role,
		JoinedAt: joinedAt,
	}, nil
}

type circlePayload struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []memberPayload `json:"members"`
	CreatedAt   string          `json:"created_at"`
}

func (p *circlePayload) toDomain() (*domain.Circle, error) {
	if p.ID <= 0 || p.Name == "" {
		return nil, fmt.Errorf("%w: circle missing id or name", ErrMalformedPayload)
	}
	createdAt, _ := time.Parse(time.RFC3339, p.CreatedAt)
	circle := &domain.Circle{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   createdAt,
		Members:     make([]domain.Member, 0, len(p.Members)),
	}
	for i := range p.Members {
		member, err := p.Members[i].toDomain(p.ID)
		if err != nil {
			return nil, err
		}
		circle.Members = append(circle.Members, member)
	}
	return circle, nil
}

type loginPayload struct {
	Success bool        `json:"success"`
	User    userPayload `json:"user"`
}
