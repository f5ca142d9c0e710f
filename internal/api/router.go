package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "memochat/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"memochat/internal/navigation"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Auth     *AuthHandler
	Sessions *SessionHandler
	Chat     *ChatHandler
}

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(store *navigation.Store, cookie CookieConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Public Routes ---
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// Liveness probe.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	})

	// --- Client pages ---
	// Every route below knows which client is calling.
	r.Group(func(r chi.Router) {
		r.Use(ClientState(store, cookie))

		// Page navigation is quick; a timeout keeps stuck requests from holding the client lock.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/", h.Sessions.HandleHome)
			r.Get("/login", h.Auth.ShowLogin)
			r.Post("/login", h.Auth.HandleLogin)
			r.Post("/register", h.Auth.HandleRegister)
			r.Post("/logout", h.Auth.HandleLogout)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth)
				r.Get("/sessions", h.Sessions.ShowSessions)
				r.Post("/sessions/new", h.Sessions.HandleStartNew)
				r.Post("/sessions/resume", h.Sessions.HandleResume)
				r.Get("/chat", h.Sessions.ShowChat)
				r.Post("/chat/back", h.Sessions.HandleBack)
			})
		})

		// Streaming endpoints must NOT have a timeout; a reply may take a while.
		r.Group(func(r chi.Router) {
			r.Use(RequireAuthAPI)
			r.Post("/chat/messages", h.Chat.HandleSendMessage)
			r.Post("/chat/images", h.Chat.HandleUploadImage)
		})
	})

	return r
}
