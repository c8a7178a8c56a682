// Package models defines the domain types for Ansuz.
package models

import "fmt"

// Type classifies an entity by the role it plays in a curated context.
type Type string

const (
	TypeProfile Type = "profile"
	TypeSkill   Type = "skill"
	TypeTool    Type = "tool"
	TypeData    Type = "data"
)

// Types lists all entity types in catalog scan order.
var Types = []Type{TypeProfile, TypeSkill, TypeTool, TypeData}

// Dir returns the source subdirectory that holds entities of this type.
// Type names are singular; directories are plural except data/.
func (t Type) Dir() string {
	if t == TypeData {
		return "data"
	}
	return string(t) + "s"
}

// Valid reports whether t is a known entity type.
func (t Type) Valid() bool {
	switch t {
	case TypeProfile, TypeSkill, TypeTool, TypeData:
		return true
	}
	return false
}

// Status is an ordered quality-of-process signal: draft < candidate <
// reviewed < stable. The zero value means the entity carries no status.
type Status int

const (
	StatusUnknown Status = iota
	StatusDraft
	StatusCandidate
	StatusReviewed
	StatusStable
)

// ParseStatus maps a frontmatter value to a Status. Unrecognized values map
// to StatusUnknown.
func ParseStatus(s string) Status {
	switch s {
	case "draft":
		return StatusDraft
	case "candidate":
		return StatusCandidate
	case "reviewed":
		return StatusReviewed
	case "stable":
		return StatusStable
	}
	return StatusUnknown
}

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusCandidate:
		return "candidate"
	case StatusReviewed:
		return "reviewed"
	case StatusStable:
		return "stable"
	}
	return ""
}

// Quality is an ordered confidence signal: low < medium < high < best. The
// zero value means the entity carries no quality.
type Quality int

const (
	QualityUnknown Quality = iota
	QualityLow
	QualityMedium
	QualityHigh
	QualityBest
)

// ParseQuality maps a frontmatter value to a Quality. Unrecognized values
// map to QualityUnknown.
func ParseQuality(s string) Quality {
	switch s {
	case "low":
		return QualityLow
	case "medium":
		return QualityMedium
	case "high":
		return QualityHigh
	case "best":
		return QualityBest
	}
	return QualityUnknown
}

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityBest:
		return "best"
	}
	return ""
}

// DocType groups data records for map generation. The empty value means the
// record carries no doc type and sorts after all known ones.
type DocType string

const (
	DocTranscript DocType = "transcript"
	DocJournal    DocType = "journal"
	DocArticle    DocType = "article"
	DocCollateral DocType = "collateral"
	DocTable      DocType = "table"
)

// DocTypes lists the known doc types in map ordering.
var DocTypes = []DocType{DocTranscript, DocJournal, DocArticle, DocCollateral, DocTable}

// Rank returns the fixed map ordering of d. Unknown or absent doc types rank
// after every known one.
func (d DocType) Rank() int {
	for i, known := range DocTypes {
		if d == known {
			return i
		}
	}
	return len(DocTypes)
}

// Ref is a portable pointer to a file: a source name plus a path relative to
// that source's root. Refs never carry absolute paths, so entities stay
// portable across environments.
type Ref struct {
	Source string `json:"source"`
	Path   string `json:"path"`
}

func (r Ref) String() string {
	return r.Source + ":" + r.Path
}

// Entity is one unit of curatable content: a Markdown document plus its
// frontmatter metadata.
type Entity struct {
	ID       string   `json:"id"`
	Type     Type     `json:"type"`
	Title    string   `json:"title,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Triggers []string `json:"triggers,omitempty"`
	Status   Status   `json:"-"`
	Quality  Quality  `json:"-"`
	DocType  DocType  `json:"doc_type,omitempty"` // data entities only
	Date     string   `json:"date,omitempty"`     // ISO date; empty means undated
	Summary3 string   `json:"summary_3,omitempty"`
	Summary1 string   `json:"summary_1,omitempty"`
	Ref      Ref      `json:"ref"`
}

// Dated reports whether the entity carries a date.
func (e Entity) Dated() bool {
	return e.Date != ""
}

// RefString returns the reference string embedded in generated index text.
func (e Entity) RefString() string {
	return fmt.Sprintf("ref:%s:%s:%s", e.Ref.Source, e.Type, e.ID)
}
