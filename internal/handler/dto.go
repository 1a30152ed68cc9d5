package handler

import (
	"time"

	"github.com/socialcircles/server/internal/domain"
)

// UserDTO is the JSON representation of a user profile. The credential hash
// never leaves the server.
type UserDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// MemberDTO is the JSON representation of one roster row.
type MemberDTO struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

func toMemberDTO(m *domain.Member) MemberDTO {
	return MemberDTO{
		UserID:   m.UserID,
		Username: m.Username,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
}

func toMemberDTOs(members []domain.Member) []MemberDTO {
	dtos := make([]MemberDTO, len(members))
	for i := range members {
		dtos[i] = toMemberDTO(&members[i])
	}
	return dtos
}

// CircleDTO is the JSON representation of a circle with its roster embedded.
type CircleDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	MemberCount int         `json:"member_count"`
	Members     []MemberDTO `json:"members"`
	CreatedAt   string      `json:"created_at"`
}

func toCircleDTO(c *domain.Circle) CircleDTO {
	return CircleDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		MemberCount: len(c.Members),
		Members:     toMemberDTOs(c.Members),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func toCircleDTOs(circles []domain.Circle) []CircleDTO {
	dtos := make([]CircleDTO, len(circles))
	for i := range circles {
		dtos[i] = toCircleDTO(&circles[i])
	}
	return dtos
}

// PostDTO is the JSON representation of a post. CircleID null means public.
type PostDTO struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	AuthorUsername string `json:"author_username"`
	CircleID       *int64 `json:"circle_id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

func toPostDTO(p *domain.Post) PostDTO {
	return PostDTO{
		ID:             p.ID,
		UserID:         p.UserID,
		AuthorUsername: p.AuthorUsername,
		CircleID:       p.CircleID,
		Title:          p.Title,
		Content:        p.Content,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

func toPostDTOs(posts []domain.Post) []PostDTO {
	dtos := make([]PostDTO, len(posts))
	for i := range posts {
		dtos[i] = toPostDTO(&posts[i])
	}
	return dtos
}
