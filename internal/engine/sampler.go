package engine

import (
	"iter"
	"math"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/ledger"
)

const (
	// DefaultStep is the sampling interval when a window leaves Step unset.
	DefaultStep = time.Hour
	// DefaultTail is how far past the latest dose a default window extends.
	DefaultTail = 24 * time.Hour
)

// Window bounds a sampled series. End is inclusive. A zero Start or End is
// filled from the ledger: earliest dose, latest dose plus DefaultTail.
type Window struct {
	Start time.Time
	End   time.Time
	Step  time.Duration
}

// Sample is the concentration of every compound at one instant.
type Sample struct {
	Time   time.Time `json:"time"`
	Levels Levels    `json:"levels"`
}

// Resolve fills the unset fields of w from l. ok is false when l is empty,
// in which case there is nothing to sample.
func (w Window) Resolve(l ledger.Ledger) (Window, bool, error) {
	earliest, latest, ok := l.Bounds()
	if !ok {
		return w, false, nil
	}
	if w.Start.IsZero() {
		w.Start = earliest
	}
	if w.End.IsZero() {
		w.End = latest.Add(DefaultTail)
	}
	if w.Step == 0 {
		w.Step = DefaultStep
	}
	if w.Step < 0 {
		return w, false, &domain.InvalidParameterError{Subject: "window", Field: "step", Value: w.Step.Hours(), Reason: "must be positive"}
	}
	if w.End.Before(w.Start) {
		return w, false, &domain.InvalidParameterError{Subject: "window", Field: "end", Value: w.End.Sub(w.Start).Hours(), Reason: "must not precede start"}
	}
	return w, true, nil
}

// Count returns the number of samples in a resolved window. It saturates at
// math.MaxInt rather than overflowing.
func (w Window) Count() int {
	n := w.End.Sub(w.Start) / w.Step
	if int64(n) >= math.MaxInt {
		return math.MaxInt
	}
	return int(n) + 1
}

// Sample returns the series of concentrations over w. Samples are computed
// one at a time as the sequence is consumed, and the sequence may be ranged
// over any number of times with identical results. An empty ledger yields
// an empty sequence.
func (e *Engine) Sample(l ledger.Ledger, w Window) (iter.Seq[Sample], error) {
	if err := e.CheckLedger(l); err != nil {
		return nil, err
	}
	w, ok, err := w.Resolve(l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return func(func(Sample) bool) {}, nil
	}

	return func(yield func(Sample) bool) {
		n := w.Count()
		for i := 0; i < n; i++ {
			at := w.Start.Add(time.Duration(i) * w.Step)
			if !yield(Sample{Time: at, Levels: e.levels(at, l)}) {
				return
			}
		}
	}, nil
}

// SampleAll collects Sample into a slice.
func (e *Engine) SampleAll(l ledger.Ledger, w Window) ([]Sample, error) {
	seq, err := e.Sample(l, w)
	if err != nil {
		return nil, err
	}
	var out []Sample
	for s := range seq {
		out = append(out, s)
	}
	return out, nil
}
