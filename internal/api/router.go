package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikolaef43/brenner-bot-sub013/internal/compilesvc"
	"github.com/nikolaef43/brenner-bot-sub013/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, serves SSE at GET /events inside the auth group.
func NewRouter(svc *compilesvc.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Thread compile pathway.
	r.Route("/threads/{threadID}", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Get("/artifact", h.Artifact)
		r.Post("/compile", h.Compile)
		r.Get("/report", h.Report)
		r.Get("/compiles", h.History)
	})

	// Pure helpers for the presentation layer (message badges).
	r.Post("/deltas/extract", h.Extract)
	r.Post("/classify", h.Classify)

	// SSE endpoint (protected by the same auth middleware).
	if broker != nil {
		r.Method(http.MethodGet, "/events", broker)
	}

	return r
}
