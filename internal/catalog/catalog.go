// Package catalog is the read-only registry of compound parameters.
package catalog

import (
	"maps"
	"slices"

	"github.com/lazypower/neurodose/internal/domain"
)

// Catalog is an immutable, ordered set of validated compounds. It is safe for
// concurrent use. Compounds handed out share their Interactions map with the
// catalog and must be treated as read-only.
type Catalog struct {
	order []string
	byID  map[string]domain.Compound
}

// New validates the compounds and builds a catalog preserving their order.
// A non-positive half-life or absorption constant, bioavailability outside
// [0, 1], or a duplicate id is rejected.
func New(compounds ...domain.Compound) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(compounds)),
		byID:  make(map[string]domain.Compound, len(compounds)),
	}
	for _, comp := range compounds {
		if err := comp.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[comp.ID]; dup {
			return nil, &domain.ConfigurationError{Field: "compound id", Value: comp.ID, Reason: "duplicate"}
		}
		comp.Interactions = maps.Clone(comp.Interactions)
		comp.Alternatives = slices.Clone(comp.Alternatives)
		c.order = append(c.order, comp.ID)
		c.byID[comp.ID] = comp
	}
	return c, nil
}

// Get returns the compound with the given id.
func (c *Catalog) Get(id string) (domain.Compound, error) {
	comp, ok := c.byID[id]
	if !ok {
		return domain.Compound{}, &domain.UnknownCompoundError{ID: id}
	}
	return comp, nil
}

// Has reports whether id names a catalog compound.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// List returns every compound in catalog order.
func (c *Catalog) List() []domain.Compound {
	out := make([]domain.Compound, len(c.order))
	for i, id := range c.order {
		out[i] = c.byID[id]
	}
	return out
}

// IDs returns compound ids in catalog order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.order)
}

// Len returns the number of compounds.
func (c *Catalog) Len() int {
	return len(c.order)
}
