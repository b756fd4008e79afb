package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DoseEvent is one logged intake. A dose is never mutated; edits replace it.
type DoseEvent struct {
	ID         string    `json:"id"`
	CompoundID string    `json:"compound_id"`
	AmountMg   float64   `json:"amount_mg"`
	Timestamp  time.Time `json:"taken_at"`
	Notes      string    `json:"notes,omitempty"`
}

// NewDose builds a validated DoseEvent with a fresh id.
func NewDose(compoundID string, amountMg float64, at time.Time, notes string) (DoseEvent, error) {
	d := DoseEvent{
		ID:         uuid.NewString(),
		CompoundID: compoundID,
		AmountMg:   amountMg,
		Timestamp:  at,
		Notes:      notes,
	}
	if err := d.Validate(); err != nil {
		return DoseEvent{}, err
	}
	return d, nil
}

// Validate checks the dose's own fields. Whether CompoundID exists is the
// catalog's concern and is checked at evaluation time.
func (d DoseEvent) Validate() error {
	if d.CompoundID == "" {
		return &UnknownCompoundError{ID: ""}
	}
	if !(d.AmountMg > 0) || math.IsInf(d.AmountMg, 0) {
		return &InvalidParameterError{Subject: d.ID, Field: "amount_mg", Value: d.AmountMg, Reason: "must be positive"}
	}
	if d.Timestamp.IsZero() {
		return &InvalidParameterError{Subject: d.ID, Field: "taken_at", Reason: "must be set"}
	}
	return nil
}

// WithTimestamp returns a copy of d taken at t.
func (d DoseEvent) WithTimestamp(t time.Time) DoseEvent {
	d.Timestamp = t
	return d
}
