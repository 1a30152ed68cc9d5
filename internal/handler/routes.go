package handler

import (
	"net/http"

	"github.com/socialcircles/server/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Everything under
// /api except register/login/logout requires an authenticated session.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	circles *service.CircleService,
	posts *service.PostService,
	users *service.UserService,
	loginLimiter *service.TokenBucket,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, loginLimiter, cookieSecure)
	circleHandler := NewCircleHandler(circles)
	postHandler := NewPostHandler(posts)
	userHandler := NewUserHandler(users)
	dashboardHandler := NewDashboardHandler(circles, posts)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", protected(authHandler.HandleMe))

	mux.Handle("POST /api/circles", protected(circleHandler.HandleCreate))
	mux.Handle("GET /api/circles/my", protected(circleHandler.HandleListMine))
	mux.Handle("GET /api/circles/{id}", protected(circleHandler.HandleGet))
	mux.Handle("DELETE /api/circles/{id}", protected(circleHandler.HandleDelete))
	mux.Handle("PUT /api/circles/{id}/name", protected(circleHandler.HandleRename))
	mux.Handle("POST /api/circles/{id}/members", protected(circleHandler.HandleAddMember))
	mux.Handle("DELETE /api/circles/{id}/members/{userId}", protected(circleHandler.HandleRemoveMember))
	mux.Handle("PUT /api/circles/{id}/members/{userId}/role", protected(circleHandler.HandleChangeRole))

	mux.Handle("POST /api/posts", protected(postHandler.HandleCreate))
	mux.Handle("GET /api/posts/feed", protected(postHandler.HandleFeed))
	mux.Handle("GET /api/posts/circle/{id}", protected(postHandler.HandleCircleTimeline))
	mux.Handle("GET /api/posts/{id}", protected(postHandler.HandleGet))
	mux.Handle("DELETE /api/posts/{id}", protected(postHandler.HandleDelete))

	mux.Handle("GET /api/users/search", protected(userHandler.HandleSearch))

	mux.Handle("GET /api/dashboard", protected(dashboardHandler.HandleDashboard))
}
