package domain

// Threshold holds the user's alert bounds for one compound.
// MaxMg is optional; when nil the compound's MaxDailyDoseMg applies.
type Threshold struct {
	CompoundID   string   `json:"compound_id"`
	MinMg        float64  `json:"min_mg"`
	MaxMg        *float64 `json:"max_mg,omitempty"`
	AlertEnabled bool     `json:"alert_enabled"`
}

// DefaultThreshold returns the threshold used when the user has not stored one.
func DefaultThreshold(c *Compound) Threshold {
	return Threshold{
		CompoundID:   c.ID,
		MinMg:        c.MinEffectiveConcentrationMg,
		AlertEnabled: true,
	}
}

// EffectiveMax returns MaxMg, or the compound's daily maximum when unset.
func (t Threshold) EffectiveMax(c *Compound) float64 {
	if t.MaxMg != nil {
		return *t.MaxMg
	}
	return c.MaxDailyDoseMg
}

// Validate checks the bounds against each other and against the compound.
func (t Threshold) Validate(c *Compound) error {
	if t.MinMg < 0 {
		return &InvalidParameterError{Subject: t.CompoundID, Field: "min_mg", Value: t.MinMg, Reason: "must not be negative"}
	}
	if t.MaxMg != nil && !(*t.MaxMg > 0) {
		return &InvalidParameterError{Subject: t.CompoundID, Field: "max_mg", Value: *t.MaxMg, Reason: "must be positive"}
	}
	if max := t.EffectiveMax(c); t.MinMg > max {
		return &InvalidParameterError{Subject: t.CompoundID, Field: "min_mg", Value: t.MinMg, Reason: "must not exceed the maximum"}
	}
	return nil
}
