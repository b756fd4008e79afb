package engine

import (
	"time"

	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/ledger"
)

// WarningKind identifies which bound a threshold warning crossed.
type WarningKind string

const (
	BelowMinimum WarningKind = "below_minimum"
	AboveMaximum WarningKind = "above_maximum"
)

// Warning is a threshold crossing for one compound.
type Warning struct {
	CompoundID  string      `json:"compound_id"`
	Kind        WarningKind `json:"kind"`
	ValueMg     float64     `json:"value_mg"`
	ThresholdMg float64     `json:"threshold_mg"`
}

// Key identifies a warning independent of the value it was raised at.
func (w Warning) Key() string {
	return w.CompoundID + "/" + string(w.Kind)
}

// EvaluateThresholds compares each enabled threshold against the compound's
// concentration at atTime. Warnings are returned in threshold order; a
// disabled threshold never produces one. A dose of a compound missing from
// the catalog is an error even when no threshold names it.
func (e *Engine) EvaluateThresholds(l ledger.Ledger, thresholds []domain.Threshold, atTime time.Time) ([]Warning, error) {
	if err := e.CheckLedger(l); err != nil {
		return nil, err
	}
	var warnings []Warning
	for _, th := range thresholds {
		c, err := e.catalog.Get(th.CompoundID)
		if err != nil {
			return nil, err
		}
		if err := th.Validate(&c); err != nil {
			return nil, err
		}
		if !th.AlertEnabled {
			continue
		}

		level := total(c, atTime, l)
		if level < th.MinMg {
			warnings = append(warnings, Warning{CompoundID: c.ID, Kind: BelowMinimum, ValueMg: level, ThresholdMg: th.MinMg})
		}
		if max := th.EffectiveMax(&c); level > max {
			warnings = append(warnings, Warning{CompoundID: c.ID, Kind: AboveMaximum, ValueMg: level, ThresholdMg: max})
		}
	}
	return warnings, nil
}

// EffectiveThresholds returns one threshold per catalog compound in catalog
// order: the stored one when present, otherwise the compound default.
func (e *Engine) EffectiveThresholds(stored []domain.Threshold) ([]domain.Threshold, error) {
	byID := make(map[string]domain.Threshold, len(stored))
	for _, th := range stored {
		if !e.catalog.Has(th.CompoundID) {
			return nil, &domain.UnknownCompoundError{ID: th.CompoundID}
		}
		byID[th.CompoundID] = th
	}

	out := make([]domain.Threshold, 0, e.catalog.Len())
	for _, c := range e.catalog.List() {
		if th, ok := byID[c.ID]; ok {
			out = append(out, th)
			continue
		}
		out = append(out, domain.DefaultThreshold(&c))
	}
	return out, nil
}
