package http

import (
	nethttp "net/http"

	"github.com/scoutline/scout-client/internal/http/handlers"
	"github.com/scoutline/scout-client/internal/http/middleware"
)

// NewRouter registers HTTP routes on a ServeMux. Client routes read the
// client id header through ClientMiddleware.
func NewRouter(h *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /state", h.State)

	mux.HandleFunc("POST /auth/signin", h.SignIn)
	mux.HandleFunc("POST /auth/signup", h.SignUp)
	mux.HandleFunc("POST /auth/verify", h.Verify)
	mux.HandleFunc("POST /auth/signout", h.SignOut)
	mux.HandleFunc("POST /onboarding", h.Onboarding)

	mux.HandleFunc("GET /favorites", h.Favorites)
	mux.HandleFunc("POST /favorites/toggle", h.ToggleFavorite)

	mux.HandleFunc("POST /chat/messages", h.SubmitMessage)
	mux.HandleFunc("POST /chat/new", h.NewChat)
	mux.HandleFunc("GET /chat/history", h.History)
	mux.HandleFunc("DELETE /chat/history", h.ClearHistory)

	mux.HandleFunc("GET /languages", h.Languages)
	mux.HandleFunc("PUT /language", h.SetLanguage)
	mux.HandleFunc("POST /view", h.Navigate)
	mux.HandleFunc("POST /players/select", h.SelectPlayer)
	mux.HandleFunc("POST /players/dashboard", h.Dashboard)
	mux.HandleFunc("POST /players/photo", h.Photo)

	return middleware.ClientMiddleware(mux)
}
