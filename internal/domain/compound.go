// Package domain holds the value types shared by the catalog, ledger and
// concentration engine.
package domain

import "math"

// InteractionKind classifies the directed note one compound carries about
// another.
type InteractionKind string

const (
	Synergistic InteractionKind = "synergistic"
	Caution     InteractionKind = "caution"
	Neutral     InteractionKind = "neutral"
)

// Valid reports whether k is one of the known kinds.
func (k InteractionKind) Valid() bool {
	switch k {
	case Synergistic, Caution, Neutral:
		return true
	}
	return false
}

// Interaction is a directed note from the owning compound about another.
type Interaction struct {
	Kind InteractionKind `json:"kind" yaml:"kind"`
	Note string          `json:"note" yaml:"note"`
}

// Compound holds the pharmacokinetic parameters of one tracked compound.
// Compounds are built once by the catalog and never mutated afterwards.
type Compound struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category,omitempty"`
	Color       string `json:"color,omitempty"`

	HalfLifeHours float64 `json:"half_life_hours"`
	// AbsorptionRateConstant is used as a time constant in hours: larger
	// values mean a slower rise toward full absorption.
	AbsorptionRateConstant float64 `json:"absorption_rate_constant"`
	Bioavailability        float64 `json:"bioavailability"`

	MaxDailyDoseMg              float64 `json:"max_daily_dose_mg"`
	MinEffectiveConcentrationMg float64 `json:"min_effective_concentration_mg"`
	TypicalDoseMg               float64 `json:"typical_dose_mg,omitempty"`
	PeakThresholdMg             float64 `json:"peak_threshold_mg,omitempty"`

	Warnings     string   `json:"warnings,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`

	// Interactions maps another compound id to this compound's note about it.
	Interactions map[string]Interaction `json:"interactions,omitempty"`
}

// InteractionWith returns the note this compound carries about other.
func (c *Compound) InteractionWith(other string) (Interaction, bool) {
	in, ok := c.Interactions[other]
	return in, ok
}

// Validate checks the numeric parameters the concentration formula relies on.
func (c *Compound) Validate() error {
	if c.ID == "" {
		return &InvalidParameterError{Subject: "compound", Field: "id", Reason: "must not be empty"}
	}
	positive := []struct {
		field string
		value float64
	}{
		{"half_life_hours", c.HalfLifeHours},
		{"absorption_rate_constant", c.AbsorptionRateConstant},
		{"max_daily_dose_mg", c.MaxDailyDoseMg},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return &InvalidParameterError{Subject: c.ID, Field: p.field, Value: p.value, Reason: "must be positive"}
		}
	}
	if !(c.Bioavailability >= 0 && c.Bioavailability <= 1) {
		return &InvalidParameterError{Subject: c.ID, Field: "bioavailability", Value: c.Bioavailability, Reason: "must be within [0, 1]"}
	}
	if c.MinEffectiveConcentrationMg < 0 {
		return &InvalidParameterError{Subject: c.ID, Field: "min_effective_concentration_mg", Value: c.MinEffectiveConcentrationMg, Reason: "must not be negative"}
	}
	for other, in := range c.Interactions {
		if !in.Kind.Valid() {
			return &ConfigurationError{Field: c.ID + ".interactions." + other + ".kind", Value: string(in.Kind), Reason: "must be synergistic, caution or neutral"}
		}
	}
	return nil
}
