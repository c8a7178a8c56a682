package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/holtvik/ansuz/internal/curation"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *curation.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/catalog", h.ListCatalog)
	r.Get("/entities/{id}", h.GetEntity)

	// Curation pipeline.
	r.Post("/curate", h.Curate)
	r.Post("/maps", h.BuildMaps)
	r.Post("/bundle", h.BuildBundle)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
