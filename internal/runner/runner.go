// Package runner provides the periodic trigger adapter: a fixed-interval
// loop that runs the full pipeline across all organizations.
package runner

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"scheduler-service/internal/scanner"
)

// Trigger is the trigger label the runner reports on its pipeline runs.
const Trigger = "periodic"

// Pipeline is the subset of the processor the runner invokes.
type Pipeline interface {
	Run(ctx context.Context, trigger string, scope scanner.Scope) ([]string, error)
}

// Runner drives the pipeline on a fixed interval. A tick that arrives while
// the previous run is still going is skipped; this guard is process-local and
// exists only to avoid needless self-overlap. Correctness under overlap with
// other processes comes from the store-level claim.
type Runner struct {
	pipeline   Pipeline
	interval   time.Duration
	runTimeout time.Duration

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewRunner creates a periodic runner.
func NewRunner(p Pipeline, interval, runTimeout time.Duration) *Runner {
	return &Runner{
		pipeline:   p,
		interval:   interval,
		runTimeout: runTimeout,
	}
}

// Start begins the periodic loop in a background goroutine. The loop exits
// when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	slog.Info("Starting periodic runner",
		"interval", r.interval,
		"run_timeout", r.runTimeout,
	)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Periodic runner stopped")
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()
}

// Wait blocks until the runner's loop has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// runOnce executes one bounded pipeline run. Failures are logged and the
// runner waits for the next tick; a run failure never stops the loop.
func (r *Runner) runOnce(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		slog.Debug("Previous periodic run still in progress, skipping tick")
		return
	}
	defer r.running.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, r.runTimeout)
	defer cancel()

	processed, err := r.pipeline.Run(runCtx, Trigger, scanner.All())
	if err != nil {
		slog.Error("Periodic pipeline run failed", "error", err)
		return
	}
	if len(processed) > 0 {
		slog.Info("Periodic pipeline run processed alerts",
			"count", len(processed),
			"titles", processed,
		)
	}
}
