// Package poller provides the legacy client-poller trigger adapter. The
// original product also triggered processing from open browser tabs (on a
// timer and whenever a tab regained focus or visibility) as redundancy
// against an unreliable server-side schedule. With a reliable periodic
// runner in place this adapter is redundancy, not a required component; it
// is kept so front-end wake signals can still nudge a scan.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"scheduler-service/internal/scanner"
)

// Trigger is the trigger label the poller reports on its pipeline runs.
const Trigger = "poller"

// Pipeline is the subset of the processor the poller invokes.
type Pipeline interface {
	Run(ctx context.Context, trigger string, scope scanner.Scope) ([]string, error)
}

// Poller drives the pipeline on its own timer and on explicit wake signals.
// The isProcessing guard only prevents self-overlap within this instance; it
// carries no meaning across processes and is not a correctness mechanism.
type Poller struct {
	pipeline   Pipeline
	interval   time.Duration
	runTimeout time.Duration

	wakeCh       chan struct{}
	isProcessing atomic.Bool
	wg           sync.WaitGroup
}

// NewPoller creates a poller.
func NewPoller(p Pipeline, interval, runTimeout time.Duration) *Poller {
	return &Poller{
		pipeline:   p,
		interval:   interval,
		runTimeout: runTimeout,
		// Buffered by one so wakes coalesce instead of piling up.
		wakeCh: make(chan struct{}, 1),
	}
}

// Wake requests an immediate scan, the way a tab regaining focus or
// visibility did in the original client. Wakes arriving while a scan is
// already pending coalesce into one.
func (p *Poller) Wake() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

// Start begins the poll loop in a background goroutine. The loop exits when
// ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	slog.Info("Starting client poller",
		"interval", p.interval,
		"run_timeout", p.runTimeout,
	)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Client poller stopped")
				return
			case <-ticker.C:
				p.runOnce(ctx)
			case <-p.wakeCh:
				p.runOnce(ctx)
			}
		}
	}()
}

// Wait blocks until the poller's loop has exited.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// runOnce executes one bounded pipeline run, skipping if one is in flight.
func (p *Poller) runOnce(ctx context.Context) {
	if !p.isProcessing.CompareAndSwap(false, true) {
		slog.Debug("Poller scan already in progress, skipping")
		return
	}
	defer p.isProcessing.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	if _, err := p.pipeline.Run(runCtx, Trigger, scanner.All()); err != nil {
		slog.Error("Poller pipeline run failed", "error", err)
	}
}
