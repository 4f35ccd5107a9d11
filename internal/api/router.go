package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/donno/internal/index"
	"github.com/starford/donno/internal/noteservice"
	"github.com/starford/donno/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is mounted at GET /events and told about every index
// rebuild the API performs.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, events *sse.Broker) chi.Router {
	var onRebuild func(*index.Listing)
	if events != nil {
		onRebuild = func(l *index.Listing) {
			events.PublishRebuilt(l.Generation, len(l.Entries))
		}
	}
	h := NewHandler(svc, onRebuild)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{index}", h.GetNote)
	r.Get("/search", h.Search)
	r.Get("/notebooks", h.Notebooks)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
