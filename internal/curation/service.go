// Package curation wires the catalog loader, curator, map builder, and
// bundle assembler behind one service shared by the HTTP API and the MCP
// server.
package curation

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/holtvik/ansuz/internal/apperr"
	"github.com/holtvik/ansuz/internal/bundle"
	"github.com/holtvik/ansuz/internal/catalog"
	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/mapgen"
	"github.com/holtvik/ansuz/internal/models"
	"github.com/holtvik/ansuz/internal/sources"
	"github.com/holtvik/ansuz/internal/storage"
)

// Service coordinates the full catalog-and-curation pipeline over one
// project. The catalog is held as an atomically swapped snapshot: every
// reload builds a fresh value, so readers never observe a half-rebuilt
// catalog.
type Service struct {
	reg       *sources.Registry
	resolver  *sources.Resolver
	store     storage.Provider
	logger    *slog.Logger
	limits    curator.Limits
	loadOpts  catalog.Options
	builder   *mapgen.Builder
	assembler *bundle.Assembler

	catalog atomic.Pointer[models.Catalog]
}

// New creates a service over the given registry. mapOpts configure the map
// builder; limits bound curation.
func New(reg *sources.Registry, store storage.Provider, logger *slog.Logger, limits curator.Limits, mapOpts mapgen.Options, loadOpts catalog.Options) *Service {
	resolver := sources.NewResolver(reg)
	builder := mapgen.NewBuilder(store, resolver, nil, logger, mapOpts)
	return &Service{
		reg:       reg,
		resolver:  resolver,
		store:     store,
		logger:    logger,
		limits:    limits,
		loadOpts:  loadOpts,
		builder:   builder,
		assembler: bundle.NewAssembler(reg, resolver, builder, store, logger),
	}
}

// Registry returns the service's source registry.
func (s *Service) Registry() *sources.Registry {
	return s.reg
}

// Resolver returns the service's reference resolver.
func (s *Service) Resolver() *sources.Resolver {
	return s.resolver
}

// Reload rebuilds the catalog wholesale and swaps it in. The previous
// snapshot stays valid for readers that already hold it.
func (s *Service) Reload() error {
	cat, err := catalog.Load(s.reg, s.loadOpts, s.logger)
	if err != nil {
		return err
	}
	s.catalog.Store(cat)
	s.logger.Info("catalog loaded", slog.Int("entities", cat.Len()))
	return nil
}

// Catalog returns the current catalog snapshot.
func (s *Service) Catalog() (*models.Catalog, error) {
	cat := s.catalog.Load()
	if cat == nil {
		return nil, fmt.Errorf("curation: catalog not loaded")
	}
	return cat, nil
}

// Entity looks up an entity by id in the current snapshot.
func (s *Service) Entity(id string) (models.Entity, error) {
	cat, err := s.Catalog()
	if err != nil {
		return models.Entity{}, err
	}
	e, ok := cat.Get(id)
	if !ok {
		return models.Entity{}, fmt.Errorf("curation: entity %q: %w", id, apperr.ErrNotFound)
	}
	return e, nil
}

// Content resolves an entity's full Markdown content.
func (s *Service) Content(id string) (models.Entity, []byte, error) {
	e, err := s.Entity(id)
	if err != nil {
		return models.Entity{}, nil, err
	}
	data, err := s.resolver.Resolve(e.Ref)
	if err != nil {
		return models.Entity{}, nil, err
	}
	return e, data, nil
}

// Curate scores the current catalog against the request. Nil limits use the
// service defaults.
func (s *Service) Curate(request string, limits *curator.Limits) (curator.Selection, error) {
	cat, err := s.Catalog()
	if err != nil {
		return curator.Selection{}, err
	}
	l := s.limits
	if limits != nil {
		l = *limits
	}
	return curator.Curate(cat, request, l, time.Now()), nil
}

// BuildMaps regenerates the map artifacts, marking the given record ids.
func (s *Service) BuildMaps(selected map[string]struct{}) (*mapgen.Result, error) {
	cat, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	return s.builder.Build(s.reg, cat, selected)
}

// BuildBundle curates, rebuilds maps, and assembles one context bundle.
// Zero-valued limits in p fall back to the service defaults.
func (s *Service) BuildBundle(p bundle.Params) (*models.ContextBundle, error) {
	cat, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	if p.Limits == (curator.Limits{}) {
		p.Limits = s.limits
	}
	return s.assembler.Build(cat, p)
}
