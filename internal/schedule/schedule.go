// Package schedule runs a callback on a fixed interval.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is a recurring job. Fn receives the tick time and must return
// promptly; ticks never overlap.
type Task struct {
	Name     string
	Interval time.Duration
	Fn       func(now time.Time)
}

// Runner drives one Task on a background goroutine.
type Runner struct {
	task   Task
	now    func() time.Time
	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewRunner prepares a runner for t. It does not start it.
func NewRunner(t Task) *Runner {
	return &Runner{
		task:   t,
		now:    time.Now,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the task once immediately, then on every interval until Stop is
// called or ctx is done.
func (r *Runner) Start(ctx context.Context) {
	r.task.Fn(r.now())

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.task.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.task.Fn(r.now())
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts further ticks and waits for an in-progress tick to finish.
// It is safe to call more than once, but only after Start.
func (r *Runner) Stop() {
	r.once.Do(func() { close(r.stopCh) })
	<-r.done
}
