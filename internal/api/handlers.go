package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/donno/internal/apperr"
	"github.com/starford/donno/internal/index"
	"github.com/starford/donno/internal/noteservice"
	"github.com/starford/donno/internal/parser"
	"github.com/starford/donno/internal/query"
)

// Handler holds API route handlers.
type Handler struct {
	svc       *noteservice.Service
	onRebuild func(*index.Listing)
}

// NewHandler creates a new Handler. onRebuild, if non-nil, is called after
// every listing or search that replaced the index cache.
func NewHandler(svc *noteservice.Service, onRebuild func(*index.Listing)) *Handler {
	return &Handler{svc: svc, onRebuild: onRebuild}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List the most recently updated notes and rebuild the index
//	@Tags			notes
//	@Produce		json
//	@Param			limit	query		int	false	"Number of notes, all when omitted"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	res, err := h.svc.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "list notes", err)
		return
	}
	h.rebuilt(res.Listing)
	writeJSON(w, http.StatusOK, toListResponse(res))
}

// Search handles GET /api/search.
//
//	@Summary		Search notes; every q pattern must match
//	@Tags			search
//	@Produce		json
//	@Param			q	query		[]string	true	"Search pattern, repeatable"	collectionFormat(multi)
//	@Success		200	{object}	ListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	patterns := r.URL.Query()["q"]
	if len(patterns) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}

	res, err := h.svc.Search(r.Context(), patterns)
	if err != nil {
		writeServiceError(w, "search", err)
		return
	}
	h.rebuilt(res.Listing)
	writeJSON(w, http.StatusOK, toListResponse(res))
}

// GetNote handles GET /api/notes/{index}.
//
//	@Summary		Resolve an index from the last listing to its note
//	@Tags			notes
//	@Produce		json
//	@Param			index	path		int	true	"1-based index from the last listing"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{index} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	ordinal, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || ordinal < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be a positive integer"))
		return
	}

	n, err := h.svc.Resolve(r.Context(), ordinal)
	if err != nil {
		writeServiceError(w, "resolve note", err)
		return
	}
	writeJSON(w, http.StatusOK, toDetail(*n, ordinal))
}

// Notebooks handles GET /api/notebooks.
//
//	@Summary		List notebooks with note counts
//	@Tags			notebooks
//	@Produce		json
//	@Success		200	{object}	NotebooksResponse
//	@Security		BearerAuth
//	@Router			/notebooks [get]
func (h *Handler) Notebooks(w http.ResponseWriter, r *http.Request) {
	nbs, err := h.svc.Notebooks(r.Context())
	if err != nil {
		writeServiceError(w, "list notebooks", err)
		return
	}
	writeJSON(w, http.StatusOK, NotebooksResponse{Notebooks: nbs})
}

func (h *Handler) rebuilt(l *index.Listing) {
	if h.onRebuild != nil && l != nil {
		h.onRebuild(l)
	}
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var qerr *query.Error
	switch {
	case errors.As(err, &qerr):
		writeJSON(w, http.StatusBadRequest, errorBody(qerr.Error()))
	case errors.Is(err, index.ErrIndexOutOfRange), errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, index.ErrStaleIndex):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, parser.ErrDecode):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error("api: "+op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
