// Package testutil provides shared test helpers for building disposable
// on-disk project fixtures.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/holtvik/ansuz/internal/sources"
	"github.com/holtvik/ansuz/internal/storage"
)

// SourcesFile is the registry filename used by all fixtures.
const SourcesFile = "sources.yaml"

// Logger returns a silent logger for tests.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Project is a disposable project fixture: a temp root with a source
// registry and entity files, cleaned up automatically.
type Project struct {
	t    *testing.T
	Root string
	srcs []sources.Source
}

// NewProject creates an empty project fixture with a registry listing no
// sources yet.
func NewProject(t *testing.T) *Project {
	t.Helper()
	p := &Project{t: t, Root: t.TempDir()}
	p.writeRegistry()
	return p
}

// AddSource registers a source backed by a directory of the same name under
// the project root.
func (p *Project) AddSource(name string, ignore bool) {
	p.t.Helper()
	if err := os.MkdirAll(filepath.Join(p.Root, name), 0o755); err != nil {
		p.t.Fatal(err)
	}
	p.srcs = append(p.srcs, sources.Source{Name: name, Path: name, Ignore: ignore})
	p.writeRegistry()
}

// AddMissingSource registers a source whose directory does not exist.
func (p *Project) AddMissingSource(name string) {
	p.t.Helper()
	p.srcs = append(p.srcs, sources.Source{Name: name, Path: name})
	p.writeRegistry()
}

func (p *Project) writeRegistry() {
	p.t.Helper()
	data, err := yaml.Marshal(map[string]any{"sources": p.srcs})
	if err != nil {
		p.t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(p.Root, SourcesFile), data, 0o644); err != nil {
		p.t.Fatal(err)
	}
}

// WriteFile writes a file under source/rel within the project root.
func (p *Project) WriteFile(source, rel, content string) {
	p.t.Helper()
	path := filepath.Join(p.Root, source, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		p.t.Fatal(err)
	}
}

// Registry loads the fixture's source registry.
func (p *Project) Registry() *sources.Registry {
	p.t.Helper()
	reg, err := sources.LoadRegistry(p.Root, SourcesFile)
	if err != nil {
		p.t.Fatalf("LoadRegistry: %v", err)
	}
	return reg
}

// Store returns a storage provider rooted at the project root.
func (p *Project) Store() storage.Provider {
	p.t.Helper()
	store, err := storage.NewFS(p.Root)
	if err != nil {
		p.t.Fatalf("NewFS: %v", err)
	}
	return store
}
