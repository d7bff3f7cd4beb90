package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"scheduler-service/internal/scanner"
)

type fakePipeline struct {
	mu       sync.Mutex
	triggers []string
	scopes   []scanner.Scope

	started chan struct{}
	release chan struct{}
}

func (f *fakePipeline) Run(ctx context.Context, trigger string, scope scanner.Scope) ([]string, error) {
	f.mu.Lock()
	f.triggers = append(f.triggers, trigger)
	f.scopes = append(f.scopes, scope)
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		<-f.release
	}
	return nil, nil
}

func (f *fakePipeline) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.triggers)
}

func waitForRuns(t *testing.T, p *fakePipeline, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for p.runCount() < want {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d runs, got %d", want, p.runCount())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestPoller_WakeTriggersRun(t *testing.T) {
	pipeline := &fakePipeline{}
	// Interval far in the future so only Wake can trigger runs.
	p := NewPoller(pipeline, time.Hour, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	p.Wake()
	waitForRuns(t, pipeline, 1)
	cancel()
	p.Wait()

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	if pipeline.triggers[0] != Trigger {
		t.Errorf("trigger = %q, want %q", pipeline.triggers[0], Trigger)
	}
	if got := pipeline.scopes[0].String(); got != "all" {
		t.Errorf("scope = %q, want %q", got, "all")
	}
}

func TestPoller_RunsOnInterval(t *testing.T) {
	pipeline := &fakePipeline{}
	p := NewPoller(pipeline, 5*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	waitForRuns(t, pipeline, 2)
	cancel()
	p.Wait()
}

func TestPoller_WakesCoalesce(t *testing.T) {
	pipeline := &fakePipeline{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	p := NewPoller(pipeline, time.Hour, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Wake()
	<-pipeline.started

	// A burst of wakes while a scan is in flight collapses to at most one
	// follow-up scan.
	for i := 0; i < 5; i++ {
		p.Wake()
	}
	pipeline.release <- struct{}{}

	<-pipeline.started
	pipeline.release <- struct{}{}
	waitForRuns(t, pipeline, 2)

	time.Sleep(20 * time.Millisecond)
	if got := pipeline.runCount(); got != 2 {
		t.Errorf("runs after wake burst = %d, want 2", got)
	}

	cancel()
	p.Wait()
}

func TestPoller_StopsOnContextCancel(t *testing.T) {
	pipeline := &fakePipeline{}
	p := NewPoller(pipeline, time.Hour, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
