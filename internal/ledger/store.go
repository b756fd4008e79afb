package ledger

import (
	"sync"
	"sync/atomic"
)

// Store publishes ledger versions to concurrent readers. Snapshot never
// blocks and always returns a complete version; writers are serialized.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Ledger]
	version atomic.Uint64
}

// NewStore returns a store holding initial.
func NewStore(initial Ledger) *Store {
	s := &Store{}
	s.current.Store(&initial)
	return s
}

// Snapshot returns the current ledger.
func (s *Store) Snapshot() Ledger {
	return *s.current.Load()
}

// Version increments on every successful Update.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Update applies fn to the current ledger and publishes the result. If fn
// returns an error nothing is published.
func (s *Store) Update(fn func(Ledger) (Ledger, error)) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(*s.current.Load())
	if err != nil {
		return s.Snapshot(), err
	}
	s.current.Store(&next)
	s.version.Add(1)
	return next, nil
}
