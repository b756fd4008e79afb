package engine

import (
	"time"

	"github.com/lazypower/neurodose/internal/domain"
)

// Circadian alignment levels.
const (
	AlignmentAsleep     = 0.0
	AlignmentSuboptimal = 0.5
	AlignmentOptimal    = 1.0
)

// optimalMargin is how long before sleep the optimal dosing window closes.
const optimalMargin = 2

// CircadianAlignment scores an hour of day against a sleep schedule:
// AlignmentOptimal from the wake hour through two hours before the sleep
// hour, AlignmentAsleep inside the sleep window, AlignmentSuboptimal in the
// gap between. Only schedule hours are considered.
//
// Hours are measured as offsets from the wake hour modulo 24, so windows
// that cross midnight need no special casing.
func CircadianAlignment(hour int, sleep domain.SleepSchedule) (float64, error) {
	if err := sleep.Validate(); err != nil {
		return 0, err
	}
	awake := mod24(sleep.Start.Hour - sleep.End.Hour)
	offset := mod24(hour - sleep.End.Hour)

	switch {
	case offset >= awake:
		return AlignmentAsleep, nil
	case offset <= awake-optimalMargin:
		return AlignmentOptimal, nil
	default:
		return AlignmentSuboptimal, nil
	}
}

// CircadianAlignmentAt is CircadianAlignment for t's hour in t's location.
func CircadianAlignmentAt(t time.Time, sleep domain.SleepSchedule) (float64, error) {
	return CircadianAlignment(t.Hour(), sleep)
}

func mod24(h int) int {
	h %= 24
	if h < 0 {
		h += 24
	}
	return h
}
