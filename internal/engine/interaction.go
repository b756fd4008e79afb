package engine

import (
	"time"

	"github.com/lazypower/neurodose/internal/domain"
)

// ToleranceFraction of a compound's daily maximum above which it counts
// toward tolerance risk.
const ToleranceFraction = 0.8

// InteractionWarning names two active compounds whose combination carries a
// caution note. CompoundID is the compound whose note raised it.
type InteractionWarning struct {
	CompoundID string `json:"compound_id"`
	OtherID    string `json:"other_id"`
	Note       string `json:"note"`
}

// Scores are the behavioral metrics for one instant.
type Scores struct {
	Synergy            int     `json:"synergy"`
	ToleranceRisk      int     `json:"tolerance_risk"`
	CircadianAlignment float64 `json:"circadian_alignment"`
}

// activePairs calls fn for every unordered pair of catalog compounds that
// are both above zero, in catalog order.
func (e *Engine) activePairs(levels Levels, fn func(a, b domain.Compound)) {
	compounds := e.catalog.List()
	for i, a := range compounds {
		if levels[a.ID] <= 0 {
			continue
		}
		for _, b := range compounds[i+1:] {
			if levels[b.ID] > 0 {
				fn(a, b)
			}
		}
	}
}

// Interactions returns one warning per active pair where either direction
// is classified caution. When both directions are, the note of the compound
// listed first in the catalog is used.
func (e *Engine) Interactions(levels Levels) []InteractionWarning {
	var out []InteractionWarning
	e.activePairs(levels, func(a, b domain.Compound) {
		if in, ok := a.InteractionWith(b.ID); ok && in.Kind == domain.Caution {
			out = append(out, InteractionWarning{CompoundID: a.ID, OtherID: b.ID, Note: in.Note})
			return
		}
		if in, ok := b.InteractionWith(a.ID); ok && in.Kind == domain.Caution {
			out = append(out, InteractionWarning{CompoundID: b.ID, OtherID: a.ID, Note: in.Note})
		}
	})
	return out
}

// SynergyScore counts active pairs where at least one direction is
// classified synergistic. A pair noted synergistic both ways counts once.
func (e *Engine) SynergyScore(levels Levels) int {
	score := 0
	e.activePairs(levels, func(a, b domain.Compound) {
		ab, _ := a.InteractionWith(b.ID)
		ba, _ := b.InteractionWith(a.ID)
		if ab.Kind == domain.Synergistic || ba.Kind == domain.Synergistic {
			score++
		}
	})
	return score
}

// ToleranceRisk counts compounds above ToleranceFraction of their daily max.
func (e *Engine) ToleranceRisk(levels Levels) int {
	risk := 0
	for _, c := range e.catalog.List() {
		if levels[c.ID] > c.MaxDailyDoseMg*ToleranceFraction {
			risk++
		}
	}
	return risk
}

// Score computes all three metrics; circadian alignment uses at's hour in
// at's location.
func (e *Engine) Score(levels Levels, at time.Time, sleep domain.SleepSchedule) (Scores, error) {
	alignment, err := CircadianAlignmentAt(at, sleep)
	if err != nil {
		return Scores{}, err
	}
	return Scores{
		Synergy:            e.SynergyScore(levels),
		ToleranceRisk:      e.ToleranceRisk(levels),
		CircadianAlignment: alignment,
	}, nil
}
