package models

// EntityRef references a curated entity without embedding its content.
type EntityRef struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Path   string `json:"path"`
	Score  int    `json:"score"`
}

// ContextBundle is the terminal curation artifact: references to a profile,
// skills, tools, records, and generated maps, plus one flattened read order.
// Bundles are built fresh per request and never merged with prior bundles.
type ContextBundle struct {
	OriginalRequest    string      `json:"original_request"`
	Profile            *EntityRef  `json:"profile"`
	Skills             []EntityRef `json:"skills"`
	Tools              []EntityRef `json:"tools"`
	Records            []EntityRef `json:"records"`
	Maps               []Ref       `json:"maps"`
	ContextReadOrder   []Ref       `json:"context_read_order"`
	RecordsTreePreview string      `json:"records_tree_preview"`
	Notes              []string    `json:"notes"`
}
