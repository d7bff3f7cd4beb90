// Package metrics collects pipeline counters and reports them to Redis so an
// operations dashboard can read them without touching the service.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MetricsKeyPrefix is the Redis key prefix for service metrics.
	MetricsKeyPrefix = "metrics:"
	// MetricsTTL is how long metrics stay in Redis if not refreshed.
	MetricsTTL = 2 * time.Minute
	// DefaultReportInterval is the default interval for writing metrics to Redis.
	DefaultReportInterval = 30 * time.Second
)

// Snapshot holds the pipeline counters at one point in time.
type Snapshot struct {
	ServiceName string    `json:"service_name"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`

	RunsStarted     uint64 `json:"runs_started"`
	RunsFailed      uint64 `json:"runs_failed"`
	AlertsProcessed uint64 `json:"alerts_processed"`
	ClaimRacesLost  uint64 `json:"claim_races_lost"`
	PushesSent      uint64 `json:"pushes_sent"`
	PushFailures    uint64 `json:"push_failures"`
	HTTPRequests    uint64 `json:"http_requests"`
	HTTPErrors      uint64 `json:"http_errors"`

	// Per-trigger run counts (periodic, poller, manual, creation).
	RunsByTrigger map[string]uint64 `json:"runs_by_trigger,omitempty"`
}

// Collector collects and reports pipeline metrics.
type Collector struct {
	serviceName    string
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	runsStarted     atomic.Uint64
	runsFailed      atomic.Uint64
	alertsProcessed atomic.Uint64
	claimRacesLost  atomic.Uint64
	pushesSent      atomic.Uint64
	pushFailures    atomic.Uint64
	httpRequests    atomic.Uint64
	httpErrors      atomic.Uint64

	triggerMu     sync.RWMutex
	runsByTrigger map[string]*atomic.Uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a new metrics collector. A nil Redis client is valid;
// counters still accumulate, they are just never reported.
func NewCollector(serviceName string, redisClient *redis.Client) *Collector {
	return &Collector{
		serviceName:    serviceName,
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: DefaultReportInterval,
		runsByTrigger:  make(map[string]*atomic.Uint64),
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval sets the interval for writing metrics to Redis.
func (c *Collector) SetReportInterval(interval time.Duration) {
	c.reportInterval = interval
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.writeMetrics(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.writeMetrics(context.Background()) // Final write
				return
			case <-ticker.C:
				c.writeMetrics(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// RecordRunStarted increments the run counter for a trigger source.
func (c *Collector) RecordRunStarted(trigger string) {
	c.runsStarted.Add(1)

	c.triggerMu.RLock()
	counter, exists := c.runsByTrigger[trigger]
	c.triggerMu.RUnlock()

	if !exists {
		c.triggerMu.Lock()
		if counter, exists = c.runsByTrigger[trigger]; !exists {
			counter = &atomic.Uint64{}
			c.runsByTrigger[trigger] = counter
		}
		c.triggerMu.Unlock()
	}
	counter.Add(1)
}

// RecordRunFailed increments the failed-run counter.
func (c *Collector) RecordRunFailed() {
	c.runsFailed.Add(1)
}

// RecordAlertProcessed increments the processed-alert counter.
func (c *Collector) RecordAlertProcessed() {
	c.alertsProcessed.Add(1)
}

// RecordClaimRaceLost increments the lost-claim counter. Lost claims are
// expected under redundant triggers; the counter exists to show the races
// are happening and being absorbed.
func (c *Collector) RecordClaimRaceLost() {
	c.claimRacesLost.Add(1)
}

// RecordPushSent increments the push-sent counter.
func (c *Collector) RecordPushSent() {
	c.pushesSent.Add(1)
}

// RecordPushFailure increments the push-failure counter.
func (c *Collector) RecordPushFailure() {
	c.pushFailures.Add(1)
}

// RecordHTTPRequest increments the served-request counter.
func (c *Collector) RecordHTTPRequest() {
	c.httpRequests.Add(1)
}

// RecordHTTPError increments the failed-request counter.
func (c *Collector) RecordHTTPError() {
	c.httpErrors.Add(1)
}

// GetSnapshot returns current metrics without writing to Redis.
func (c *Collector) GetSnapshot() *Snapshot {
	c.triggerMu.RLock()
	byTrigger := make(map[string]uint64, len(c.runsByTrigger))
	for name, counter := range c.runsByTrigger {
		byTrigger[name] = counter.Load()
	}
	c.triggerMu.RUnlock()

	return &Snapshot{
		ServiceName:     c.serviceName,
		StartedAt:       c.startedAt,
		LastUpdated:     time.Now().UTC(),
		RunsStarted:     c.runsStarted.Load(),
		RunsFailed:      c.runsFailed.Load(),
		AlertsProcessed: c.alertsProcessed.Load(),
		ClaimRacesLost:  c.claimRacesLost.Load(),
		PushesSent:      c.pushesSent.Load(),
		PushFailures:    c.pushFailures.Load(),
		HTTPRequests:    c.httpRequests.Load(),
		HTTPErrors:      c.httpErrors.Load(),
		RunsByTrigger:   byTrigger,
	}
}

// writeMetrics writes current metrics to Redis.
func (c *Collector) writeMetrics(ctx context.Context) {
	if c.redis == nil {
		return
	}

	snapshot := c.GetSnapshot()

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("Failed to marshal metrics", "service", c.serviceName, "error", err)
		return
	}

	key := MetricsKeyPrefix + c.serviceName
	if err := c.redis.Set(ctx, key, data, MetricsTTL).Err(); err != nil {
		slog.Error("Failed to write metrics to Redis", "service", c.serviceName, "error", err)
		return
	}

	slog.Debug("Metrics written to Redis", "service", c.serviceName, "key", key)
}

// ConnectRedis creates and validates a Redis connection.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return client, nil
}
