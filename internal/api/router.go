package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/lesa/internal/docservice"
	"github.com/starford/lesa/internal/render"
	"github.com/starford/lesa/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, is mounted at GET /events inside the auth group and
// receives progress events from the progress endpoints.
func NewRouter(svc *docservice.Service, renderer *render.Renderer, broker *sse.Broker, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc, renderer, broker)
	ih := NewImportHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents CRUD.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Search.
	r.Get("/search", h.Search)

	// Outline.
	r.Get("/outline", h.Outline)

	// Reading progress.
	r.Get("/progress/*", h.GetProgress)
	r.Post("/progress/*", h.ReportProgress)

	// Markdown import (auth-protected).
	r.Post("/import", ih.Import)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
			broker.ServeHTTP(w, req)
		})
	}

	return r
}
