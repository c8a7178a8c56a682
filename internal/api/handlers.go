package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/holtvik/ansuz/internal/apperr"
	"github.com/holtvik/ansuz/internal/bundle"
	"github.com/holtvik/ansuz/internal/curation"
	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *curation.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *curation.Service) *Handler {
	return &Handler{svc: svc}
}

// ListCatalog handles GET /api/catalog. An optional ?type= query filters by
// entity type.
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.Catalog()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("catalog not loaded"))
		return
	}

	var ents []models.Entity
	if t := models.Type(r.URL.Query().Get("type")); t != "" {
		if !t.Valid() {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown entity type"))
			return
		}
		ents = cat.ByType(t)
	} else {
		ents = cat.All()
	}

	items := make([]EntitySummary, 0, len(ents))
	for _, e := range ents {
		items = append(items, summarize(e))
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Entities: items, Total: len(items)})
}

// GetEntity handles GET /api/entities/{id}.
func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}

	e, content, err := h.svc.Content(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get entity failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, EntityResponse{Entity: e, Content: string(content)})
}

// Curate handles POST /api/curate.
func (h *Handler) Curate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCurateRequest(w, r)
	if !ok {
		return
	}

	sel, err := h.svc.Curate(req.Request, limitsFrom(req))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("catalog not loaded"))
		return
	}
	writeJSON(w, http.StatusOK, CurateResponse{
		Profile: sel.Profile,
		Skills:  sel.Skills,
		Tools:   sel.Tools,
		Records: sel.Records,
		Notes:   sel.Notes,
	})
}

// BuildMaps handles POST /api/maps.
func (h *Handler) BuildMaps(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.BuildMaps(nil)
	if err != nil {
		slog.Error("build maps failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, MapsResponse{Maps: res.Maps})
}

// BuildBundle handles POST /api/bundle.
func (h *Handler) BuildBundle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req BundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.Request == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("request is required"))
		return
	}

	p := bundle.Params{Request: req.Request, RunDir: req.RunDir}
	if l := limitsFrom(req.CurateRequest); l != nil {
		p.Limits = *l
	}

	b, err := h.svc.BuildBundle(p)
	if err != nil {
		slog.Error("build bundle failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func decodeCurateRequest(w http.ResponseWriter, r *http.Request) (CurateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CurateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return req, false
	}
	if req.Request == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("request is required"))
		return req, false
	}
	return req, true
}

// limitsFrom returns explicit limits when any override is present, else nil
// so the service defaults apply.
func limitsFrom(req CurateRequest) *curator.Limits {
	if req.MaxSkills == nil && req.MaxTools == nil && req.MaxRecords == nil {
		return nil
	}
	l := curator.DefaultLimits()
	if req.MaxSkills != nil {
		l.MaxSkills = *req.MaxSkills
	}
	if req.MaxTools != nil {
		l.MaxTools = *req.MaxTools
	}
	if req.MaxRecords != nil {
		l.MaxRecords = *req.MaxRecords
	}
	return &l
}
