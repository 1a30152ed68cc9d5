package handler

import (
	"net/http"
	"strconv"

	"github.com/socialcircles/server/internal/service"
)

// PostHandler handles post HTTP requests. All routes run behind RequireAuth.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// HandleCreate creates a post, optionally inside a circle.
// POST /api/posts
// Request: {"title":"...","content":"...","circle_id":10}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		CircleID *int64 `json:"circle_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	post, err := h.posts.Create(r.Context(), user.ID, req.Title, req.Content, req.CircleID)
	if err != nil {
		writeCircleError(w, err, "create post")
		return
	}

	writeJSON(w, http.StatusCreated, toPostDTO(post))
}

// HandleFeed returns recent posts from the requester's circles plus public
// posts.
// GET /api/posts/feed?limit=&offset=
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	limit, offset := pagination(r)

	posts, err := h.posts.Feed(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeCircleError(w, err, "load feed")
		return
	}

	writeJSON(w, http.StatusOK, toPostDTOs(posts))
}

// HandleCircleTimeline returns a circle's posts. Member-only.
// GET /api/posts/circle/{id}?limit=&offset=
func (h *PostHandler) HandleCircleTimeline(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit, offset := pagination(r)

	posts, err := h.posts.CircleTimeline(r.Context(), user.ID, circleID, limit, offset)
	if err != nil {
		writeCircleError(w, err, "load circle posts")
		return
	}

	writeJSON(w, http.StatusOK, toPostDTOs(posts))
}

// HandleGet returns a single post.
// GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), user.ID, postID)
	if err != nil {
		writeCircleError(w, err, "get post")
		return
	}

	writeJSON(w, http.StatusOK, toPostDTO(post))
}

// HandleDelete deletes a post (author or circle owner).
// DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), user.ID, postID); err != nil {
		writeCircleError(w, err, "delete post")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
