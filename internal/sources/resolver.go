package sources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/holtvik/ansuz/internal/apperr"
	"github.com/holtvik/ansuz/internal/models"
)

// OutputsSource is the virtual source name for generated artifacts. It
// resolves against the project root directly, bypassing the registry.
const OutputsSource = "outputs"

// Resolver turns (source, relative path) references into file content.
type Resolver struct {
	reg *Registry
}

// NewResolver creates a resolver over the given registry.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve reads the file a ref points at. Unknown source, missing source
// root, and missing file are distinct error conditions.
func (r *Resolver) Resolve(ref models.Ref) ([]byte, error) {
	if ref.Source == OutputsSource {
		data, err := os.ReadFile(filepath.Join(r.reg.Root(), filepath.FromSlash(ref.Path)))
		if err != nil {
			return nil, fmt.Errorf("resolver: generated file %q: %w", ref.Path, apperr.ErrNotFound)
		}
		return data, nil
	}

	src, ok := r.reg.Lookup(ref.Source)
	if !ok {
		return nil, fmt.Errorf("resolver: source %q is not registered: %w", ref.Source, apperr.ErrUnknownSource)
	}

	root := r.reg.SourceRoot(src)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("resolver: root %s of source %q: %w", root, ref.Source, apperr.ErrSourceRootMissing)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(ref.Path)))
	if err != nil {
		return nil, fmt.Errorf("resolver: file %q in source %q: %w", ref.Path, ref.Source, apperr.ErrNotFound)
	}
	return data, nil
}
