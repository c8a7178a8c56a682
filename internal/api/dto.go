package api

import (
	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/models"
)

// CurateRequest is the request body for POST /api/curate.
type CurateRequest struct {
	Request    string `json:"request"`
	MaxSkills  *int   `json:"max_skills,omitempty"`
	MaxTools   *int   `json:"max_tools,omitempty"`
	MaxRecords *int   `json:"max_records,omitempty"`
}

// BundleRequest is the request body for POST /api/bundle.
type BundleRequest struct {
	CurateRequest
	RunDir string `json:"run_dir,omitempty"`
}

// EntitySummary is a lightweight catalog listing item.
type EntitySummary struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Source  string `json:"source"`
	Path    string `json:"path"`
	DocType string `json:"doc_type,omitempty"`
	Date    string `json:"date,omitempty"`
	Status  string `json:"status,omitempty"`
	Quality string `json:"quality,omitempty"`
}

// CatalogResponse wraps a catalog listing.
type CatalogResponse struct {
	Entities []EntitySummary `json:"entities"`
	Total    int             `json:"total"`
}

// EntityResponse is the full entity representation with content.
type EntityResponse struct {
	Entity  models.Entity `json:"entity"`
	Content string        `json:"content"`
}

// CurateResponse wraps a curated selection.
type CurateResponse struct {
	Profile *curator.Scored  `json:"profile"`
	Skills  []curator.Scored `json:"skills"`
	Tools   []curator.Scored `json:"tools"`
	Records []curator.Scored `json:"records"`
	Notes   []string         `json:"notes"`
}

// MapsResponse wraps generated map references.
type MapsResponse struct {
	Maps []models.Ref `json:"maps"`
}

func summarize(e models.Entity) EntitySummary {
	return EntitySummary{
		ID:      e.ID,
		Type:    string(e.Type),
		Title:   e.Title,
		Source:  e.Ref.Source,
		Path:    e.Ref.Path,
		DocType: string(e.DocType),
		Date:    e.Date,
		Status:  e.Status.String(),
		Quality: e.Quality.String(),
	}
}
