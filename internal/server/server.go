package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samvad-hq/users-api-keywords/internal/storage"
)

// Options configures the users API handler.
type Options struct {
	// AuthToken, when set, must equal the Authorization header of every users request.
	AuthToken string
	Events    EventPublisher
	Log       Logger
}

// Handler serves the users API.
type Handler struct {
	store     storage.Store
	events    EventPublisher
	log       Logger
	authToken string
}

// NewHandler builds the router for the users API backed by store.
func NewHandler(store storage.Store, opts Options) http.Handler {
	h := &Handler{
		store:     store,
		events:    opts.Events,
		log:       opts.Log,
		authToken: opts.AuthToken,
	}
	if h.log == nil {
		h.log = noopLogger{}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/users", h.ListUsers)
		r.Get("/users/all", h.ListAllUsers)
		r.Get("/users/{id}", h.GetUser)
		r.Post("/users", h.CreateUser)
		r.Put("/users/{id}", h.UpdateUser)
		r.Patch("/users/{id}", h.PatchUser)
		r.Delete("/users/{id}", h.DeleteUser)
		r.Post("/reset", h.Reset)
	})

	return r
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" && r.Header.Get("Authorization") != h.authToken {
			respondJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
