package models

import (
	"fmt"
	"sort"

	"github.com/holtvik/ansuz/internal/apperr"
)

// Catalog is the deduplicated mapping of entity ids to entities across all
// sources. It is rebuilt wholesale on every load; callers must not assume a
// previous instance stays valid after a reload.
type Catalog struct {
	entities map[string]Entity
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entities: make(map[string]Entity)}
}

// Insert adds e to the catalog. A duplicate id is a hard failure naming both
// conflicting locations.
func (c *Catalog) Insert(e Entity) error {
	if prev, ok := c.entities[e.ID]; ok {
		return fmt.Errorf("%w %q: defined at %s and %s", apperr.ErrDuplicateID, e.ID, prev.Ref, e.Ref)
	}
	c.entities[e.ID] = e
	return nil
}

// Get returns the entity with the given id.
func (c *Catalog) Get(id string) (Entity, bool) {
	e, ok := c.entities[id]
	return e, ok
}

// Len returns the number of entities in the catalog.
func (c *Catalog) Len() int {
	return len(c.entities)
}

// ByType returns all entities of type t, sorted by id for determinism.
func (c *Catalog) ByType(t Type) []Entity {
	var out []Entity
	for _, e := range c.entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns every entity in the catalog, sorted by id.
func (c *Catalog) All() []Entity {
	out := make([]Entity, 0, len(c.entities))
	for _, e := range c.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
