package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Shared, tab-independent routes
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
	r.Get("/ws", h.Hub.ServeWs)
	r.Get("/qr.png", h.handleQRCode)
	r.Get("/api/tally", h.handleTally)

	// Everything else acts on the caller's tab
	r.Group(func(r chi.Router) {
		r.Use(h.Tabs.Middleware)

		r.Get("/", h.handleIndex)
		r.Get("/api/screen", h.handleScreen)

		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/panels/{panel}", h.handleOpenPanel)
		r.Post("/search", h.handleSearch)
		r.Post("/theme", h.handleTheme)

		r.Post("/details", h.handleSetDetails)
		r.Post("/details/clear", h.handleClearDetails)
		r.Post("/vote", h.handleVote)

		r.Post("/candidate/login", h.handleCandidateLogin)
		r.Post("/candidate/logout", h.handleCandidateLogout)
		r.Post("/candidate/register", h.handleRegister)
	})

	return r
}
