package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/socialcircles/server/internal/domain"
	"github.com/socialcircles/server/internal/service"
)

// CircleHandler handles circle and roster HTTP requests. All routes run
// behind RequireAuth.
type CircleHandler struct {
	circles *service.CircleService
}

// NewCircleHandler creates a new CircleHandler.
func NewCircleHandler(circles *service.CircleService) *CircleHandler {
	return &CircleHandler{circles: circles}
}

// HandleCreate creates a circle with the requester as owner.
// POST /api/circles
// Request: {"name":"...","description":"..."}
func (h *CircleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	circle, err := h.circles.Create(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		writeCircleError(w, err, "create circle")
		return
	}

	writeJSON(w, http.StatusCreated, toCircleDTO(circle))
}

// HandleListMine returns the circles the requester belongs to.
// GET /api/circles/my
func (h *CircleHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	circles, err := h.circles.ListMine(r.Context(), user.ID)
	if err != nil {
		writeCircleError(w, err, "list circles")
		return
	}

	writeJSON(w, http.StatusOK, toCircleDTOs(circles))
}

// HandleGet returns a circle with its embedded roster.
// GET /api/circles/{id}
func (h *CircleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	circle, err := h.circles.Get(r.Context(), user.ID, circleID)
	if err != nil {
		writeCircleError(w, err, "get circle")
		return
	}

	writeJSON(w, http.StatusOK, toCircleDTO(circle))
}

// HandleAddMember adds a user to the roster with role member.
// POST /api/circles/{id}/members
// Request: {"user_id": 42}
func (h *CircleHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := readJSON(r, &req); err != nil || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	member, err := h.circles.AddMember(r.Context(), user.ID, circleID, req.UserID)
	if err != nil {
		writeCircleError(w, err, "add member")
		return
	}

	writeJSON(w, http.StatusCreated, toMemberDTO(member))
}

// HandleRemoveMember removes a roster row under the row-level rule.
// DELETE /api/circles/{id}/members/{userId}
func (h *CircleHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.circles.RemoveMember(r.Context(), user.ID, circleID, targetID); err != nil {
		writeCircleError(w, err, "remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleChangeRole sets a member's role to member or moderator.
// PUT /api/circles/{id}/members/{userId}/role
// Request: {"role":"moderator"}
func (h *CircleHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	member, err := h.circles.ChangeRole(r.Context(), user.ID, circleID, targetID, req.Role)
	if err != nil {
		writeCircleError(w, err, "change role")
		return
	}

	writeJSON(w, http.StatusOK, toMemberDTO(member))
}

// HandleRename changes the circle name. Owner-only.
// PUT /api/circles/{id}/name
// Request: {"name":"..."}
func (h *CircleHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	circle, err := h.circles.Rename(r.Context(), user.ID, circleID, req.Name)
	if err != nil {
		writeCircleError(w, err, "rename circle")
		return
	}

	writeJSON(w, http.StatusOK, toCircleDTO(circle))
}

// HandleDelete deletes a circle. Owner-only.
// DELETE /api/circles/{id}
func (h *CircleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.circles.Delete(r.Context(), user.ID, circleID); err != nil {
		writeCircleError(w, err, "delete circle")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeCircleError maps domain errors onto the HTTP surface. A 403 is
// authoritative for clients: the action did not happen.
func writeCircleError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have permission to do that.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrDuplicateMember):
		writeError(w, http.StatusConflict, "User is already a member of this circle.")
	case errors.Is(err, domain.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "Invalid role.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

// pathID parses a numeric path value, writing a 404 on garbage.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}
