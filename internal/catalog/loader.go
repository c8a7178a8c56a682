// Package catalog builds the typed, duplicate-free entity catalog from all
// registered sources.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/holtvik/ansuz/internal/models"
	"github.com/holtvik/ansuz/internal/parser"
	"github.com/holtvik/ansuz/internal/sources"
)

// datePrefixRe matches a leading YYYY-MM-DD token in a filename.
var datePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Options control a single load pass.
type Options struct {
	// IncludeIgnored also loads sources marked ignore: true. Test fixtures
	// use this to opt otherwise-excluded sources in.
	IncludeIgnored bool
}

// Load scans every registered source's typed subdirectories and merges all
// entities into one catalog. The returned catalog is a fresh value on every
// call. Malformed documents are skipped with a warning; a duplicate id
// anywhere aborts the whole load.
func Load(reg *sources.Registry, opts Options, logger *slog.Logger) (*models.Catalog, error) {
	cat := models.NewCatalog()

	for _, src := range reg.All() {
		if src.Ignore && !opts.IncludeIgnored {
			logger.Debug("catalog: skipping ignored source", slog.String("source", src.Name))
			continue
		}

		root := reg.SourceRoot(src)
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			logger.Warn("catalog: source root missing, skipping",
				slog.String("source", src.Name),
				slog.String("root", root))
			continue
		}

		if err := loadSource(cat, src, root, logger); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

// loadSource scans one source root for entity files of every type.
func loadSource(cat *models.Catalog, src sources.Source, root string, logger *slog.Logger) error {
	fsys := os.DirFS(root)

	for _, typ := range models.Types {
		pattern := typ.Dir() + "/**/*.md"
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return fmt.Errorf("catalog: scan %s/%s: %w", src.Name, typ.Dir(), err)
		}
		sort.Strings(matches)

		for _, rel := range matches {
			ent, ok := loadEntity(src, root, rel, typ, logger)
			if !ok {
				continue
			}
			if err := cat.Insert(ent); err != nil {
				return fmt.Errorf("catalog: %w", err)
			}
		}
	}
	return nil
}

// loadEntity parses and validates one entity file. It returns ok=false for
// any document that should be skipped rather than fail the load.
func loadEntity(src sources.Source, root, rel string, typ models.Type, logger *slog.Logger) (models.Entity, bool) {
	loc := src.Name + ":" + rel

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		logger.Warn("catalog: unreadable file, skipping",
			slog.String("file", loc), slog.String("error", err.Error()))
		return models.Entity{}, false
	}

	res, err := parser.Parse(data)
	if err != nil {
		logger.Warn("catalog: parse failed, skipping",
			slog.String("file", loc), slog.String("error", err.Error()))
		return models.Entity{}, false
	}

	m := res.Meta
	if m.ID == "" || m.Type == "" {
		logger.Warn("catalog: missing required id or type, skipping", slog.String("file", loc))
		return models.Entity{}, false
	}
	if models.Type(m.Type) != typ {
		logger.Warn("catalog: type does not match directory, skipping",
			slog.String("file", loc),
			slog.String("declared", m.Type),
			slog.String("directory", typ.Dir()))
		return models.Entity{}, false
	}

	ent := models.Entity{
		ID:       m.ID,
		Type:     typ,
		Title:    res.Title,
		Tags:     lower(m.Tags),
		Triggers: lower(m.Triggers),
		Status:   models.ParseStatus(m.Status),
		Quality:  models.ParseQuality(m.Quality),
		Date:     m.Date,
		Summary3: m.Summary3,
		Summary1: m.Summary1,
		Ref:      models.Ref{Source: src.Name, Path: rel},
	}

	if typ == models.TypeData {
		ent.DocType = models.DocType(m.DocType)
		if ent.Date == "" {
			// One-way derivation from the filename, at load time only.
			ent.Date = datePrefixRe.FindString(path.Base(rel))
		}
	}

	return ent, true
}

// lower normalizes matching terms to lowercase, dropping empties.
func lower(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
