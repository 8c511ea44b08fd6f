// ABOUTME: Background autosave loop persisting dirty document snapshots on a fixed interval
// ABOUTME: Re-dirties and retries on failure; cycles never overlap

package autosave

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2389/memoui/internal/document"
	"github.com/2389/memoui/internal/store"
)

// DefaultInterval is the pause between autosave cycles.
const DefaultInterval = 2 * time.Second

// Source supplies snapshots of the live document.
type Source interface {
	// Snapshot returns a deep copy and clears the dirty flag, or nil, false
	// when there is nothing to save.
	Snapshot() (*document.Document, bool)
	// MarkDirty forces the next cycle to write.
	MarkDirty()
}

// Options configures a Loop.
type Options struct {
	// Interval between the end of one cycle and the start of the next.
	Interval time.Duration
	// EscalateAfter is the number of consecutive failed writes after which
	// OnEscalate is called. Zero disables escalation.
	EscalateAfter int
	// OnEscalate is called once per failure streak when it reaches
	// EscalateAfter. Retries continue afterwards.
	OnEscalate func(failures int, err error)
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Loop periodically writes dirty snapshots to a store.
type Loop struct {
	source Source
	saver  store.DocumentSaver
	opts   Options
	logger *slog.Logger

	cycleMu  sync.Mutex // serializes cycles from Run and Flush
	failures atomic.Int64
	saves    atomic.Int64
}

// New creates a Loop. It does nothing until Run or Flush is called.
func New(source Source, saver store.DocumentSaver, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		source: source,
		saver:  saver,
		opts:   opts,
		logger: logger.With("component", "autosave"),
	}
}

// Run sleeps for the interval, runs a cycle, and repeats until ctx is
// cancelled. The timer is re-armed only after a cycle's write resolves.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(l.opts.Interval)
	defer timer.Stop()

	l.logger.Debug("autosave loop started", "interval", l.opts.Interval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("autosave loop stopped")
			return ctx.Err()
		case <-timer.C:
			_, _ = l.Cycle(ctx)
			timer.Reset(l.opts.Interval)
		}
	}
}

// Flush runs one cycle immediately, waiting for any in-progress cycle.
func (l *Loop) Flush(ctx context.Context) error {
	_, err := l.Cycle(ctx)
	return err
}

// Cycle performs one autosave step. When the source is dirty it takes a
// snapshot (clearing the flag) and writes it. A failed write re-dirties the
// source so the next cycle retries. saved reports whether a write succeeded.
func (l *Loop) Cycle(ctx context.Context) (saved bool, err error) {
	l.cycleMu.Lock()
	defer l.cycleMu.Unlock()

	snap, dirty := l.source.Snapshot()
	if !dirty {
		return false, nil
	}

	if err := l.saver.SaveDocument(ctx, snap); err != nil {
		l.source.MarkDirty()
		l.recordFailure(err)
		return false, err
	}

	if n := l.failures.Swap(0); n > 0 {
		l.logger.Info("autosave recovered", "failed_attempts", n)
	}
	l.saves.Add(1)
	l.logger.Debug("autosaved document", "document_id", snap.ID())
	return true, nil
}

func (l *Loop) recordFailure(err error) {
	n := int(l.failures.Add(1))

	if l.opts.EscalateAfter > 0 && n == l.opts.EscalateAfter {
		l.logger.Error("autosave keeps failing", "consecutive_failures", n, "error", err)
		if l.opts.OnEscalate != nil {
			l.opts.OnEscalate(n, err)
		}
		return
	}
	l.logger.Warn("autosave failed, will retry", "consecutive_failures", n, "error", err)
}

// ConsecutiveFailures returns the length of the current failure streak.
func (l *Loop) ConsecutiveFailures() int {
	return int(l.failures.Load())
}

// Saves returns the number of successful writes.
func (l *Loop) Saves() int {
	return int(l.saves.Load())
}
