package engine

import (
	"fmt"

	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/ledger"
)

// DailyMaxAdvisory is returned when logging a dose would push a compound past
// its daily maximum.
type DailyMaxAdvisory struct {
	CompoundID     string  `json:"compound_id"`
	ProjectedMg    float64 `json:"projected_mg"`
	MaxDailyDoseMg float64 `json:"max_daily_dose_mg"`
}

func (a *DailyMaxAdvisory) Error() string {
	return fmt.Sprintf("%s: projected %.1f mg exceeds daily maximum %.1f mg", a.CompoundID, a.ProjectedMg, a.MaxDailyDoseMg)
}

// CheckDailyMax projects the compound's level at the dose's time as the
// existing concentration plus the full new amount. It returns a
// *DailyMaxAdvisory when that exceeds the daily maximum, nil otherwise.
func (e *Engine) CheckDailyMax(l ledger.Ledger, d domain.DoseEvent) error {
	c, err := e.catalog.Get(d.CompoundID)
	if err != nil {
		return err
	}
	projected := total(c, d.Timestamp, l) + d.AmountMg
	if projected > c.MaxDailyDoseMg {
		return &DailyMaxAdvisory{CompoundID: c.ID, ProjectedMg: projected, MaxDailyDoseMg: c.MaxDailyDoseMg}
	}
	return nil
}
