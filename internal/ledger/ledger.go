// Package ledger holds the dose history as immutable values.
//
// A Ledger is never modified in place: Append, Replace and Remove return a
// new Ledger and leave the receiver untouched, so a snapshot handed to the
// engine cannot change underneath it.
package ledger

import (
	"iter"
	"slices"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
)

// Ledger is an insertion-ordered collection of doses. The zero value is an
// empty ledger.
type Ledger struct {
	doses []domain.DoseEvent
}

// New builds a ledger from doses in the given order, validating each.
func New(doses ...domain.DoseEvent) (Ledger, error) {
	for _, d := range doses {
		if err := d.Validate(); err != nil {
			return Ledger{}, err
		}
	}
	return Ledger{doses: slices.Clone(doses)}, nil
}

// Len returns the number of doses.
func (l Ledger) Len() int { return len(l.doses) }

// Doses returns a copy of the doses in insertion order.
func (l Ledger) Doses() []domain.DoseEvent { return slices.Clone(l.doses) }

// All iterates every dose in insertion order.
func (l Ledger) All() iter.Seq[domain.DoseEvent] {
	return func(yield func(domain.DoseEvent) bool) {
		for _, d := range l.doses {
			if !yield(d) {
				return
			}
		}
	}
}

// ForCompound iterates the doses of one compound in insertion order.
func (l Ledger) ForCompound(id string) iter.Seq[domain.DoseEvent] {
	return func(yield func(domain.DoseEvent) bool) {
		for _, d := range l.doses {
			if d.CompoundID == id && !yield(d) {
				return
			}
		}
	}
}

// Get returns the dose with the given id.
func (l Ledger) Get(id string) (domain.DoseEvent, bool) {
	i := l.index(id)
	if i < 0 {
		return domain.DoseEvent{}, false
	}
	return l.doses[i], true
}

// Append returns a ledger with d added at the end.
func (l Ledger) Append(d domain.DoseEvent) (Ledger, error) {
	if err := d.Validate(); err != nil {
		return l, err
	}
	next := make([]domain.DoseEvent, len(l.doses), len(l.doses)+1)
	copy(next, l.doses)
	return Ledger{doses: append(next, d)}, nil
}

// Replace returns a ledger where the dose with d.ID is swapped for d,
// keeping its position. It reports false if no such dose exists.
func (l Ledger) Replace(d domain.DoseEvent) (Ledger, bool, error) {
	if err := d.Validate(); err != nil {
		return l, false, err
	}
	i := l.index(d.ID)
	if i < 0 {
		return l, false, nil
	}
	next := slices.Clone(l.doses)
	next[i] = d
	return Ledger{doses: next}, true, nil
}

// Remove returns a ledger without the dose with the given id.
func (l Ledger) Remove(id string) (Ledger, bool) {
	i := l.index(id)
	if i < 0 {
		return l, false
	}
	next := make([]domain.DoseEvent, 0, len(l.doses)-1)
	next = append(next, l.doses[:i]...)
	next = append(next, l.doses[i+1:]...)
	return Ledger{doses: next}, true
}

// Bounds returns the earliest and latest dose timestamps. ok is false for an
// empty ledger.
func (l Ledger) Bounds() (earliest, latest time.Time, ok bool) {
	if len(l.doses) == 0 {
		return time.Time{}, time.Time{}, false
	}
	earliest, latest = l.doses[0].Timestamp, l.doses[0].Timestamp
	for _, d := range l.doses[1:] {
		if d.Timestamp.Before(earliest) {
			earliest = d.Timestamp
		}
		if d.Timestamp.After(latest) {
			latest = d.Timestamp
		}
	}
	return earliest, latest, true
}

func (l Ledger) index(id string) int {
	return slices.IndexFunc(l.doses, func(d domain.DoseEvent) bool { return d.ID == id })
}
