package handler

import (
	"net/http"
	"strconv"

	"github.com/socialcircles/server/internal/service"
)

// UserHandler handles user search requests backing the member-picking UI.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleSearch searches users by username substring, excluding existing
// members of circle_id when given.
// GET /api/users/search?query=ali&circle_id=10
func (h *UserHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	circleID, _ := strconv.ParseInt(q.Get("circle_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))

	users, err := h.users.Search(r.Context(), q.Get("query"), circleID, limit)
	if err != nil {
		writeCircleError(w, err, "search users")
		return
	}

	writeJSON(w, http.StatusOK, toUserDTOs(users))
}
