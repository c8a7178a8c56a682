// Package sources resolves named content sources to filesystem roots and
// turns portable (source, path) references into file content.
package sources

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source is one registered content root.
type Source struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Ignore bool   `yaml:"ignore"`
}

// Registry maps source names to filesystem roots. It is loaded once from the
// project's sources file and read-only afterwards.
type Registry struct {
	root    string
	sources []Source
	byName  map[string]Source
}

// LoadRegistry reads the sources file (relative to the project root). A
// missing or malformed registry file is fatal; individual source roots are
// allowed to be missing and are handled by the catalog loader.
func LoadRegistry(projectRoot, sourcesFile string) (*Registry, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("sources: resolve project root: %w", err)
	}

	path := filepath.Join(absRoot, sourcesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources: read registry %s: %w", path, err)
	}

	var file struct {
		Sources []Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("sources: parse registry %s: %w", path, err)
	}

	byName := make(map[string]Source, len(file.Sources))
	for _, s := range file.Sources {
		if s.Name == "" || s.Path == "" {
			return nil, fmt.Errorf("sources: registry %s: every source needs a name and a path", path)
		}
		if s.Name == OutputsSource {
			return nil, fmt.Errorf("sources: registry %s: %q is reserved for generated artifacts", path, OutputsSource)
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("sources: registry %s: source %q listed twice", path, s.Name)
		}
		byName[s.Name] = s
	}

	return &Registry{root: absRoot, sources: file.Sources, byName: byName}, nil
}

// Root returns the absolute project root the registry was loaded from.
func (r *Registry) Root() string {
	return r.root
}

// All returns the sources in registry file order.
func (r *Registry) All() []Source {
	return r.sources
}

// Lookup returns the source with the given name.
func (r *Registry) Lookup(name string) (Source, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// SourceRoot resolves a source's configured path against the project root.
// Absolute paths are kept as-is.
func (r *Registry) SourceRoot(s Source) string {
	if filepath.IsAbs(s.Path) {
		return s.Path
	}
	return filepath.Join(r.root, s.Path)
}
