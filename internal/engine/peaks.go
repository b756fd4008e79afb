package engine

import "time"

// Peak is the highest sampled concentration of one compound.
type Peak struct {
	Time time.Time `json:"time"`
	Mg   float64   `json:"mg"`
}

// Peaks returns the maximum sample per compound, earliest wins on ties.
// Compounds that never rise above zero are omitted.
func Peaks(samples []Sample) map[string]Peak {
	out := make(map[string]Peak)
	for _, s := range samples {
		for id, mg := range s.Levels {
			if mg <= 0 {
				continue
			}
			if p, ok := out[id]; !ok || mg > p.Mg {
				out[id] = Peak{Time: s.Time, Mg: mg}
			}
		}
	}
	return out
}
