package handler

import (
	"net/http"

	"github.com/socialcircles/server/internal/service"
)

// DashboardHandler aggregates the landing view: profile, circles, recent feed.
type DashboardHandler struct {
	circles *service.CircleService
	posts   *service.PostService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(circles *service.CircleService, posts *service.PostService) *DashboardHandler {
	return &DashboardHandler{circles: circles, posts: posts}
}

// HandleDashboard returns the requester's profile, circles, and recent feed
// in one round trip.
// GET /api/dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	circles, err := h.circles.ListMine(r.Context(), user.ID)
	if err != nil {
		writeCircleError(w, err, "dashboard circles")
		return
	}

	posts, err := h.posts.Feed(r.Context(), user.ID, 0, 0)
	if err != nil {
		writeCircleError(w, err, "dashboard feed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":         toUserDTO(user),
		"circles":      toCircleDTOs(circles),
		"recent_posts": toPostDTOs(posts),
	})
}
