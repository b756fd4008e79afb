// Package alerts polls the engine on a schedule and turns changes in the
// warning set into a notification feed.
package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/engine"
	"github.com/lazypower/neurodose/internal/ledger"
	"github.com/lazypower/neurodose/internal/metrics"
	"github.com/lazypower/neurodose/internal/schedule"
	"go.uber.org/zap"
)

const defaultFeedSize = 100

// Settings supplies the user's thresholds and sleep schedule.
type Settings interface {
	ListThresholds() ([]domain.Threshold, error)
	GetSleepSchedule() (domain.SleepSchedule, error)
}

// Notification is a warning that became active at Time.
type Notification struct {
	Time        time.Time                  `json:"time"`
	Key         string                     `json:"key"`
	Warning     *engine.Warning            `json:"warning,omitempty"`
	Interaction *engine.InteractionWarning `json:"interaction,omitempty"`
}

// Status is the result of the most recent tick.
type Status struct {
	At           time.Time                   `json:"at"`
	Levels       engine.Levels               `json:"levels"`
	Warnings     []engine.Warning            `json:"warnings"`
	Interactions []engine.InteractionWarning `json:"interactions"`
	Scores       engine.Scores               `json:"scores"`
}

// Notifier evaluates the current ledger snapshot on every tick. A warning is
// added to the feed only on the tick where it first appears; it must clear
// before it can be raised again.
type Notifier struct {
	engine   *engine.Engine
	doses    *ledger.Store
	settings Settings
	log      *zap.Logger
	metrics  *metrics.Collector
	feedSize int

	mu     sync.RWMutex
	active map[string]bool
	feed   []Notification
	latest *Status
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithFeedSize bounds the feed; the oldest notifications are dropped first.
func WithFeedSize(n int) Option {
	return func(nt *Notifier) {
		if n > 0 {
			nt.feedSize = n
		}
	}
}

// WithMetrics exports tick results to c.
func WithMetrics(c *metrics.Collector) Option {
	return func(nt *Notifier) { nt.metrics = c }
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(nt *Notifier) { nt.log = l }
}

// New creates a Notifier.
func New(eng *engine.Engine, doses *ledger.Store, settings Settings, opts ...Option) *Notifier {
	n := &Notifier{
		engine:   eng,
		doses:    doses,
		settings: settings,
		log:      zap.NewNop(),
		feedSize: defaultFeedSize,
		active:   make(map[string]bool),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Task wraps Tick for a schedule.Runner.
func (n *Notifier) Task(interval time.Duration) schedule.Task {
	return schedule.Task{
		Name:     "threshold-monitor",
		Interval: interval,
		Fn: func(now time.Time) {
			if err := n.Tick(now); err != nil {
				n.log.Warn("monitor tick failed", zap.Error(err))
			}
		},
	}
}

// Tick evaluates thresholds, interactions and scores at now against the
// current ledger snapshot.
func (n *Notifier) Tick(now time.Time) error {
	snap := n.doses.Snapshot()

	stored, err := n.settings.ListThresholds()
	if err != nil {
		return fmt.Errorf("load thresholds: %w", err)
	}
	thresholds, err := n.engine.EffectiveThresholds(stored)
	if err != nil {
		return err
	}
	sleep, err := n.settings.GetSleepSchedule()
	if err != nil {
		return fmt.Errorf("load sleep schedule: %w", err)
	}

	levels, err := n.engine.TotalConcentrationAllCompounds(now, snap)
	if err != nil {
		return err
	}
	warnings, err := n.engine.EvaluateThresholds(snap, thresholds, now)
	if err != nil {
		return err
	}
	interactions := n.engine.Interactions(levels)
	scores, err := n.engine.Score(levels, now, sleep)
	if err != nil {
		return err
	}

	current := make(map[string]bool, len(warnings)+len(interactions))
	var raised []Notification
	for i := range warnings {
		w := warnings[i]
		key := "threshold/" + w.Key()
		current[key] = true
		if !n.isActive(key) {
			raised = append(raised, Notification{Time: now, Key: key, Warning: &w})
		}
	}
	for i := range interactions {
		iw := interactions[i]
		key := "interaction/" + iw.CompoundID + "/" + iw.OtherID
		current[key] = true
		if !n.isActive(key) {
			raised = append(raised, Notification{Time: now, Key: key, Interaction: &iw})
		}
	}

	n.mu.Lock()
	n.active = current
	n.feed = append(n.feed, raised...)
	if over := len(n.feed) - n.feedSize; over > 0 {
		n.feed = append([]Notification(nil), n.feed[over:]...)
	}
	n.latest = &Status{At: now, Levels: levels, Warnings: warnings, Interactions: interactions, Scores: scores}
	n.mu.Unlock()

	for _, r := range raised {
		if r.Warning != nil {
			n.metrics.WarningRaised(r.Warning.CompoundID, string(r.Warning.Kind))
			n.log.Info("threshold warning",
				zap.String("compound", r.Warning.CompoundID),
				zap.String("kind", string(r.Warning.Kind)),
				zap.Float64("value_mg", r.Warning.ValueMg),
				zap.Float64("threshold_mg", r.Warning.ThresholdMg),
			)
			continue
		}
		n.metrics.WarningRaised(r.Interaction.CompoundID, "interaction")
		n.log.Info("interaction warning",
			zap.String("compound", r.Interaction.CompoundID),
			zap.String("other", r.Interaction.OtherID),
			zap.String("note", r.Interaction.Note),
		)
	}
	n.metrics.ObserveTick(levels, scores.Synergy, scores.ToleranceRisk, scores.CircadianAlignment)
	n.log.Debug("monitor tick",
		zap.Time("at", now),
		zap.Int("doses", snap.Len()),
		zap.Int("warnings", len(warnings)),
		zap.Int("raised", len(raised)),
	)
	return nil
}

// Feed returns notifications newest first.
func (n *Notifier) Feed() []Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Notification, len(n.feed))
	for i, nt := range n.feed {
		out[len(n.feed)-1-i] = nt
	}
	return out
}

// Latest returns the most recent tick's status, or nil before the first tick.
func (n *Notifier) Latest() *Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.latest
}

func (n *Notifier) isActive(key string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.active[key]
}
