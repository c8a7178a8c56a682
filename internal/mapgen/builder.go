// Package mapgen generates the browsable tree and per-record index artifacts
// over data entities, with an optional incremental summary cache.
package mapgen

import (
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/holtvik/ansuz/internal/models"
	"github.com/holtvik/ansuz/internal/parser"
	"github.com/holtvik/ansuz/internal/sources"
	"github.com/holtvik/ansuz/internal/storage"
)

// Generated artifacts live in a fixed top-level output area and are always
// regenerated from scratch, never appended.
const (
	OutputDir = "outputs"
	TreeFile  = "records_tree.txt"
	IndexFile = "records_index.md"
)

// summaryLimit caps generated fallback excerpts.
const summaryLimit = 300

// noSummary is emitted when a record has no precomputed summary and fallback
// generation is disabled.
const noSummary = "(no summary available)"

// Options control map generation.
type Options struct {
	// IncludeFallbackSummaries generates an excerpt for records without a
	// precomputed summary; when false a placeholder is emitted instead.
	IncludeFallbackSummaries bool
	// OutputRefSource is the source name stamped on returned map refs.
	OutputRefSource string
	// Incremental reuses cached summaries for records whose files did not
	// change since the previous build.
	Incremental bool
}

// Result references the generated artifacts in read order.
type Result struct {
	Maps []models.Ref `json:"maps"`
}

// Builder writes the generated map artifacts for a catalog.
type Builder struct {
	store    storage.Provider
	resolver *sources.Resolver
	detector ChangeDetector
	logger   *slog.Logger
	opts     Options
}

// NewBuilder creates a map builder. A nil detector defaults to git-based
// change detection; an empty OutputRefSource defaults to the outputs source.
func NewBuilder(store storage.Provider, resolver *sources.Resolver, detector ChangeDetector, logger *slog.Logger, opts Options) *Builder {
	if detector == nil {
		detector = GitDetector{}
	}
	if opts.OutputRefSource == "" {
		opts.OutputRefSource = sources.OutputsSource
	}
	return &Builder{
		store:    store,
		resolver: resolver,
		detector: detector,
		logger:   logger,
		opts:     opts,
	}
}

// Build writes the tree and index artifacts for the catalog's data entities,
// marking every record whose id is in selected, and returns refs to both.
func (b *Builder) Build(reg *sources.Registry, cat *models.Catalog, selected map[string]struct{}) (*Result, error) {
	records := sortRecords(cat.ByType(models.TypeData))

	summaries, err := b.summaries(reg, records)
	if err != nil {
		return nil, err
	}

	if err := b.store.Write(path.Join(OutputDir, TreeFile), []byte(renderTree(records, selected))); err != nil {
		return nil, fmt.Errorf("mapgen: write tree: %w", err)
	}
	if err := b.store.Write(path.Join(OutputDir, IndexFile), []byte(renderIndex(records, summaries))); err != nil {
		return nil, fmt.Errorf("mapgen: write index: %w", err)
	}

	b.logger.Info("mapgen: maps generated", slog.Int("records", len(records)))

	return &Result{Maps: []models.Ref{
		{Source: b.opts.OutputRefSource, Path: path.Join(OutputDir, TreeFile)},
		{Source: b.opts.OutputRefSource, Path: path.Join(OutputDir, IndexFile)},
	}}, nil
}

// sortRecords orders data entities deterministically: doc type rank, then
// date descending (undated after dated), then path ascending.
func sortRecords(records []models.Entity) []models.Entity {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if ra, rb := a.DocType.Rank(), b.DocType.Rank(); ra != rb {
			return ra < rb
		}
		if a.Date != b.Date {
			// ISO dates compare lexicographically; undated sorts last.
			if a.Date == "" || b.Date == "" {
				return b.Date == ""
			}
			return a.Date > b.Date
		}
		return a.Ref.String() < b.Ref.String()
	})
	return records
}

// summaries computes (or, in incremental mode, reuses) the summary for every
// record, keyed by ref string.
func (b *Builder) summaries(reg *sources.Registry, records []models.Entity) (map[string]string, error) {
	out := make(map[string]string, len(records))

	if !b.opts.Incremental {
		for _, e := range records {
			out[e.Ref.String()] = b.summarize(e)
		}
		return out, nil
	}

	cached := loadCache(b.store, b.logger)
	changes := newChangeSets(reg, b.detector)

	fresh := make(cache, len(records))
	for _, e := range records {
		key := e.Ref.String()
		if prev, ok := cached[key]; ok && !changes.changed(e.Ref) {
			fresh[key] = prev
		} else {
			fresh[key] = b.summarize(e)
		}
		out[key] = fresh[key]
	}

	// The full, possibly partially-refreshed cache is rewritten after every
	// incremental build.
	if err := fresh.save(b.store); err != nil {
		return nil, err
	}
	return out, nil
}

// summarize picks the record's summary: summary_3, then summary_1, then a
// generated excerpt when fallback is enabled.
func (b *Builder) summarize(e models.Entity) string {
	if e.Summary3 != "" {
		return e.Summary3
	}
	if e.Summary1 != "" {
		return e.Summary1
	}
	if !b.opts.IncludeFallbackSummaries {
		return noSummary
	}

	data, err := b.resolver.Resolve(e.Ref)
	if err != nil {
		b.logger.Warn("mapgen: summary fallback failed",
			slog.String("ref", e.Ref.String()),
			slog.String("error", err.Error()))
		return noSummary
	}
	res, err := parser.Parse(data)
	if err != nil {
		return noSummary
	}
	excerpt := parser.Excerpt(res.Body, summaryLimit)
	if excerpt == "" {
		return noSummary
	}
	return excerpt
}

// changeSets lazily computes one changed-path set per source root.
type changeSets struct {
	reg      *sources.Registry
	detector ChangeDetector
	bySource map[string]changeSet
}

type changeSet struct {
	paths map[string]struct{}
	all   bool
}

func newChangeSets(reg *sources.Registry, detector ChangeDetector) *changeSets {
	return &changeSets{reg: reg, detector: detector, bySource: make(map[string]changeSet)}
}

// changed reports whether the file behind ref must be re-summarized.
func (c *changeSets) changed(ref models.Ref) bool {
	set, ok := c.bySource[ref.Source]
	if !ok {
		src, found := c.reg.Lookup(ref.Source)
		if !found {
			return true
		}
		paths, all := c.detector.Changed(c.reg.SourceRoot(src))
		set = changeSet{paths: paths, all: all}
		c.bySource[ref.Source] = set
	}
	if set.all {
		return true
	}
	_, hit := set.paths[ref.Path]
	return hit
}

// titleRe strips a leading date token and separator from a filename stem.
var titleRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[-_ ]*`)

// humanize turns a record's filename into a display title: extension and
// leading date stripped, underscores to spaces.
func humanize(e models.Entity) string {
	base := path.Base(e.Ref.Path)
	base = strings.TrimSuffix(base, ".md")
	base = titleRe.ReplaceAllString(base, "")
	base = strings.ReplaceAll(base, "_", " ")
	if base == "" {
		return e.ID
	}
	return base
}

// heading returns the tree heading for a doc type group.
func heading(d models.DocType) string {
	if d.Rank() == len(models.DocTypes) {
		return "Other"
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderTree produces the plain-text tree artifact: one heading per doc type
// group, one line per record with an optional [SELECTED] marker.
func renderTree(records []models.Entity, selected map[string]struct{}) string {
	var sb strings.Builder
	sb.WriteString("# Data Records\n")

	lastRank := -1
	for _, e := range records {
		if r := e.DocType.Rank(); r != lastRank {
			lastRank = r
			sb.WriteString("\n## " + heading(e.DocType) + "\n")
		}
		sb.WriteString("- ")
		if _, ok := selected[e.ID]; ok {
			sb.WriteString("[SELECTED] ")
		}
		sb.WriteString(humanize(e))
		if e.Dated() {
			sb.WriteString(" (" + e.Date + ")")
		}
		sb.WriteString("\n")
	}

	if len(records) == 0 {
		sb.WriteString("\n(no data records)\n")
	}
	return sb.String()
}

// renderIndex produces the Markdown index artifact: one bulleted entry per
// record with its reference string, annotations, and summary.
func renderIndex(records []models.Entity, summaries map[string]string) string {
	var sb strings.Builder
	sb.WriteString("# Records Index\n")

	for _, e := range records {
		sb.WriteString("\n- " + e.RefString())
		if e.Dated() {
			sb.WriteString(" (" + e.Date + ")")
		}
		if e.DocType != "" {
			sb.WriteString(" [" + string(e.DocType) + "]")
		}
		sb.WriteString("\n  " + summaries[e.Ref.String()] + "\n")
	}

	if len(records) == 0 {
		sb.WriteString("\n(no data records)\n")
	}
	return sb.String()
}
