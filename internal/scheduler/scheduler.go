// Package scheduler drives the periodic work of the session hub: flushing
// dirty sessions to their slots, refreshing live durations and pruning
// sessions past retention.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Target is the work the scheduler drives. *hub.Hub satisfies it.
type Target interface {
	FlushAll(ctx context.Context) (failed int)
	RefreshAll()
	Prune(retention time.Duration) int
}

// Config holds the tick intervals. A zero interval disables that job.
type Config struct {
	FlushInterval   time.Duration
	RefreshInterval time.Duration
	PruneInterval   time.Duration
	Retention       time.Duration

	// DrainTimeout bounds the final flush on shutdown.
	DrainTimeout time.Duration
}

// Scheduler holds no state of its own; every tick works on the target as it is.
type Scheduler struct {
	target Target
	cfg    Config
}

// New creates a scheduler for target.
func New(target Target, cfg Config) *Scheduler {
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 30 * time.Second
	}
	return &Scheduler{target: target, cfg: cfg}
}

// tickerC returns a ticker channel, or nil (blocks forever) when d is zero.
func tickerC(d time.Duration) (<-chan time.Time, func()) {
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Start runs until ctx is cancelled, then performs a final flush.
func (s *Scheduler) Start(ctx context.Context) error {
	flushC, stopFlush := tickerC(s.cfg.FlushInterval)
	defer stopFlush()
	refreshC, stopRefresh := tickerC(s.cfg.RefreshInterval)
	defer stopRefresh()

	var pruneC <-chan time.Time
	if s.cfg.Retention > 0 {
		c, stopPrune := tickerC(s.cfg.PruneInterval)
		defer stopPrune()
		pruneC = c
	}

	slog.Info("[Scheduler] Starting",
		"flush_interval", s.cfg.FlushInterval,
		"refresh_interval", s.cfg.RefreshInterval,
		"prune_interval", s.cfg.PruneInterval,
		"retention", s.cfg.Retention,
	)

	for {
		select {
		case <-flushC:
			s.flush(ctx)
		case <-refreshC:
			s.target.RefreshAll()
		case <-pruneC:
			s.target.Prune(s.cfg.Retention)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.DrainTimeout)
			defer cancel()

			slog.Info("[Scheduler] Running final flush before shutdown...")
			s.target.RefreshAll()
			s.flush(shutdownCtx)
			slog.Info("[Scheduler] Final flush complete")
			return nil
		}
	}
}

func (s *Scheduler) flush(ctx context.Context) {
	if failed := s.target.FlushAll(ctx); failed > 0 {
		slog.Warn("[Scheduler] Some sessions could not be persisted, retrying next tick",
			"failed", failed,
		)
	}
}
