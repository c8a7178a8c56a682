// Package curator scores catalog entities against a request string and
// selects a bounded subset per entity type.
package curator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/holtvik/ansuz/internal/models"
)

// Limits bound how many entities of each type a selection may carry. The
// profile slot is always at most one.
type Limits struct {
	MaxSkills  int
	MaxTools   int
	MaxRecords int
}

// DefaultLimits returns the standard selection bounds.
func DefaultLimits() Limits {
	return Limits{MaxSkills: 3, MaxTools: 3, MaxRecords: 8}
}

// Scored pairs an entity with its request score.
type Scored struct {
	Entity models.Entity `json:"entity"`
	Score  int           `json:"score"`
}

// Selection is the curator output: at most one profile plus ranked skill,
// tool, and record subsets. Zero matches yields empty slices, never an error.
type Selection struct {
	Profile *Scored
	Skills  []Scored
	Tools   []Scored
	Records []Scored
	Notes   []string
}

// SelectedRecordIDs returns the ids of the selected data records.
func (s Selection) SelectedRecordIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Records))
	for _, r := range s.Records {
		ids[r.Entity.ID] = struct{}{}
	}
	return ids
}

var qualityBonus = map[models.Quality]int{
	models.QualityBest:   20,
	models.QualityHigh:   15,
	models.QualityMedium: 10,
	models.QualityLow:    5,
}

var statusBonus = map[models.Status]int{
	models.StatusStable:    15,
	models.StatusReviewed:  10,
	models.StatusCandidate: 5,
}

// recencyPhrases gate the recency bonus: only requests that signal recency
// intent reward newer records.
var recencyPhrases = []string{"latest", "most recent", "last meeting", "recent", "last"}

// recencyWindowDays is the strict cutoff: records older than this get no
// bonus even though the formula would still be positive.
const recencyWindowDays = 30

// Score computes the deterministic relevance score of e for request at now.
// Tags score +10 per substring hit, triggers +15, plus fixed quality and
// status bonuses; dated data records gain a recency bonus when the request
// carries recency intent.
func Score(e models.Entity, request string, now time.Time) int {
	req := strings.ToLower(request)
	score := 0

	// Repeated tags each count; there is no dedup cap.
	for _, tag := range e.Tags {
		if strings.Contains(req, tag) {
			score += 10
		}
	}
	for _, trigger := range e.Triggers {
		if strings.Contains(req, trigger) {
			score += 15
		}
	}

	score += qualityBonus[e.Quality]
	score += statusBonus[e.Status]

	if e.Type == models.TypeData && e.Dated() && hasRecencyIntent(req) {
		if date, err := time.Parse("2006-01-02", e.Date); err == nil {
			age := int(now.Sub(date).Hours() / 24)
			if age < 0 {
				age = 0
			}
			if age <= recencyWindowDays {
				score += 20 - age/2
			}
		}
	}

	return score
}

func hasRecencyIntent(req string) bool {
	for _, phrase := range recencyPhrases {
		if strings.Contains(req, phrase) {
			return true
		}
	}
	return false
}

// Curate scores every entity in the catalog and selects the top candidates
// per type. Equal scores break ties on id ascending so the selection is
// fully deterministic.
func Curate(cat *models.Catalog, request string, limits Limits, now time.Time) Selection {
	rank := func(t models.Type) []Scored {
		ents := cat.ByType(t)
		scored := make([]Scored, 0, len(ents))
		for _, e := range ents {
			scored = append(scored, Scored{Entity: e, Score: Score(e, request, now)})
		}
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			return scored[i].Entity.ID < scored[j].Entity.ID
		})
		return scored
	}

	profiles := rank(models.TypeProfile)
	skills := rank(models.TypeSkill)
	tools := rank(models.TypeTool)
	records := rank(models.TypeData)

	var sel Selection
	if len(profiles) > 0 {
		top := profiles[0]
		sel.Profile = &top
	}
	sel.Skills = take(skills, limits.MaxSkills)
	sel.Tools = take(tools, limits.MaxTools)
	sel.Records = take(records, limits.MaxRecords)

	if sel.Profile != nil {
		sel.Notes = append(sel.Notes,
			fmt.Sprintf("profile %q selected (score %d)", sel.Profile.Entity.ID, sel.Profile.Score))
	} else {
		sel.Notes = append(sel.Notes, "no profile available")
	}
	sel.Notes = append(sel.Notes,
		fmt.Sprintf("%d of %d skills selected", len(sel.Skills), len(skills)),
		fmt.Sprintf("%d of %d tools selected", len(sel.Tools), len(tools)),
		fmt.Sprintf("%d of %d records selected", len(sel.Records), len(records)))

	return sel
}

func take(s []Scored, n int) []Scored {
	if n < 0 {
		n = 0
	}
	if len(s) > n {
		s = s[:n]
	}
	return s
}
