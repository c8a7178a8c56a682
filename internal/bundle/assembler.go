// Package bundle merges a curated selection with generated maps into one
// ordered, cross-referenced context artifact.
package bundle

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/mapgen"
	"github.com/holtvik/ansuz/internal/models"
	"github.com/holtvik/ansuz/internal/sources"
	"github.com/holtvik/ansuz/internal/storage"
)

// BundleFile is the name of the persisted bundle artifact inside a run
// directory.
const BundleFile = "context_bundle.json"

// Params configure one bundle build.
type Params struct {
	Request string
	Limits  curator.Limits
	// RunDir, when set, persists the bundle JSON under this directory
	// (relative to the project root). Persistence failures are fatal.
	RunDir string
	// Now anchors recency scoring; the zero value means time.Now().
	Now time.Time
}

// Assembler builds context bundles from a catalog.
type Assembler struct {
	reg      *sources.Registry
	resolver *sources.Resolver
	builder  *mapgen.Builder
	store    storage.Provider
	logger   *slog.Logger
}

// NewAssembler creates a bundle assembler.
func NewAssembler(reg *sources.Registry, resolver *sources.Resolver, builder *mapgen.Builder, store storage.Provider, logger *slog.Logger) *Assembler {
	return &Assembler{
		reg:      reg,
		resolver: resolver,
		builder:  builder,
		store:    store,
		logger:   logger,
	}
}

// Build curates the catalog for the request, regenerates the maps with the
// selected record ids, and returns the bundle with its flattened read order.
// Maps always precede full record content in context_read_order so a reader
// consults the lightweight index before any full document.
func (a *Assembler) Build(cat *models.Catalog, p Params) (*models.ContextBundle, error) {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	sel := curator.Curate(cat, p.Request, p.Limits, now)

	res, err := a.builder.Build(a.reg, cat, sel.SelectedRecordIDs())
	if err != nil {
		return nil, fmt.Errorf("bundle: build maps: %w", err)
	}

	b := &models.ContextBundle{
		OriginalRequest: p.Request,
		Skills:          entityRefs(sel.Skills),
		Tools:           entityRefs(sel.Tools),
		Records:         entityRefs(sel.Records),
		Maps:            res.Maps,
		Notes:           sel.Notes,
	}
	if sel.Profile != nil {
		ref := entityRef(*sel.Profile)
		b.Profile = &ref
	}

	// Fixed read order: profile, skills, tools, maps, records.
	order := make([]models.Ref, 0, 1+len(sel.Skills)+len(sel.Tools)+len(res.Maps)+len(sel.Records))
	if sel.Profile != nil {
		order = append(order, sel.Profile.Entity.Ref)
	}
	for _, s := range sel.Skills {
		order = append(order, s.Entity.Ref)
	}
	for _, t := range sel.Tools {
		order = append(order, t.Entity.Ref)
	}
	order = append(order, res.Maps...)
	for _, r := range sel.Records {
		order = append(order, r.Entity.Ref)
	}
	b.ContextReadOrder = order

	b.RecordsTreePreview = a.treePreview(res.Maps)

	if p.RunDir != "" {
		if err := a.persist(b, p.RunDir); err != nil {
			return nil, err
		}
	}

	a.logger.Info("bundle: assembled",
		slog.String("request", p.Request),
		slog.Int("read_order", len(order)))
	return b, nil
}

// treePreview reads back the tree artifact: the first map ref whose path
// ends in the tree filename, else the first map ref.
func (a *Assembler) treePreview(maps []models.Ref) string {
	if len(maps) == 0 {
		return ""
	}
	ref := maps[0]
	for _, m := range maps {
		if strings.HasSuffix(m.Path, mapgen.TreeFile) {
			ref = m
			break
		}
	}
	data, err := a.resolver.Resolve(ref)
	if err != nil {
		a.logger.Warn("bundle: tree preview unavailable",
			slog.String("ref", ref.String()),
			slog.String("error", err.Error()))
		return ""
	}
	return string(data)
}

// persist writes the bundle JSON under runDir. Directory creation and the
// write must both succeed or the whole build fails.
func (a *Assembler) persist(b *models.ContextBundle, runDir string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("bundle: encode: %w", err)
	}
	target := path.Join(runDir, BundleFile)
	if err := a.store.Write(target, append(data, '\n')); err != nil {
		return fmt.Errorf("bundle: persist %s: %w", target, err)
	}
	return nil
}

func entityRef(s curator.Scored) models.EntityRef {
	return models.EntityRef{
		ID:     s.Entity.ID,
		Source: s.Entity.Ref.Source,
		Path:   s.Entity.Ref.Path,
		Score:  s.Score,
	}
}

func entityRefs(scored []curator.Scored) []models.EntityRef {
	out := make([]models.EntityRef, 0, len(scored))
	for _, s := range scored {
		out = append(out, entityRef(s))
	}
	return out
}
