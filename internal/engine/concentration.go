package engine

import (
	"math"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/ledger"
)

// Levels maps compound id to active concentration in mg at one instant.
type Levels map[string]float64

// ConcentrationOfDose returns the active amount of a single dose at atTime.
//
//	absorption  = 1 - e^(-Δt / absorptionRateConstant)
//	elimination = 0.5 ^ (Δt / halfLife)
//	mg          = amount * bioavailability * absorption * elimination
//
// Δt is in hours. Before the dose is taken the result is exactly 0, and at
// the moment it is taken absorption is 0, so the curve never jumps.
func ConcentrationOfDose(d domain.DoseEvent, c domain.Compound, atTime time.Time) float64 {
	dt := atTime.Sub(d.Timestamp).Hours()
	if dt <= 0 {
		return 0
	}
	absorption := -math.Expm1(-dt / c.AbsorptionRateConstant)
	elimination := math.Pow(0.5, dt/c.HalfLifeHours)
	return d.AmountMg * c.Bioavailability * absorption * elimination
}

// TotalConcentration sums the contribution of every dose of compoundID in l
// at atTime. Doses after atTime contribute 0. An empty ledger yields 0.
func (e *Engine) TotalConcentration(compoundID string, atTime time.Time, l ledger.Ledger) (float64, error) {
	c, err := e.catalog.Get(compoundID)
	if err != nil {
		return 0, err
	}
	return total(c, atTime, l), nil
}

// TotalConcentrationAllCompounds returns the concentration of every catalog
// compound at atTime. Compounds without doses are present with 0.
func (e *Engine) TotalConcentrationAllCompounds(atTime time.Time, l ledger.Ledger) (Levels, error) {
	if err := e.CheckLedger(l); err != nil {
		return nil, err
	}
	return e.levels(atTime, l), nil
}

// levels assumes l has already passed CheckLedger.
func (e *Engine) levels(atTime time.Time, l ledger.Ledger) Levels {
	out := make(Levels, e.catalog.Len())
	for _, c := range e.catalog.List() {
		out[c.ID] = 0
	}
	for d := range l.All() {
		c, _ := e.catalog.Get(d.CompoundID)
		out[d.CompoundID] += ConcentrationOfDose(d, c, atTime)
	}
	return out
}

func total(c domain.Compound, atTime time.Time, l ledger.Ledger) float64 {
	var sum float64
	for d := range l.ForCompound(c.ID) {
		sum += ConcentrationOfDose(d, c, atTime)
	}
	return sum
}
