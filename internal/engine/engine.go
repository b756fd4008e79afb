// Package engine computes compound concentrations from a dose ledger and
// derives time series, threshold warnings and interaction scores from them.
//
// Every function is a pure computation over its explicit inputs. The engine
// holds only the catalog, which is immutable, so one Engine may be shared by
// any number of goroutines.
package engine

import (
	"github.com/lazypower/neurodose/internal/catalog"
	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/ledger"
)

// Engine evaluates ledgers against a compound catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates an Engine over cat.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// CheckLedger returns an UnknownCompoundError for the first dose whose
// compound is not in the catalog.
func (e *Engine) CheckLedger(l ledger.Ledger) error {
	for d := range l.All() {
		if !e.catalog.Has(d.CompoundID) {
			return &domain.UnknownCompoundError{ID: d.CompoundID}
		}
	}
	return nil
}
