/*
retention.go - Archive retention scheduler

PURPOSE:
  Periodically deletes archived settlement runs older than the configured
  age. The archive is append-only otherwise; this is its only removal.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Purges once on start, then on every tick
  - A zero MaxAge disables the scheduler

USAGE:
  scheduler := NewRetentionScheduler(store, metrics, 30*24*time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - settlement/store.go: RunStore.DeleteBefore
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mirage-sim/settlement-engine/observability"
	"github.com/mirage-sim/settlement-engine/settlement"
)

// RetentionScheduler purges old archived runs.
type RetentionScheduler struct {
	Runs          settlement.RunStore
	Metrics       *observability.Metrics
	MaxAge        time.Duration
	CheckInterval time.Duration

	now    func() time.Time
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRetentionScheduler creates a new scheduler checking every hour.
func NewRetentionScheduler(runs settlement.RunStore, metrics *observability.Metrics, maxAge time.Duration) *RetentionScheduler {
	return &RetentionScheduler{
		Runs:          runs,
		Metrics:       metrics,
		MaxAge:        maxAge,
		CheckInterval: time.Hour,
		now:           time.Now,
	}
}

// Start begins the scheduler.
func (rs *RetentionScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.MaxAge <= 0 {
		log.Println("[Retention] Disabled, archived runs are kept forever")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	log.Printf("[Retention] Started: max age %v, check interval %v", rs.MaxAge, rs.CheckInterval)
}

// Stop stops the scheduler and waits for a purge in progress.
func (rs *RetentionScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		log.Println("[Retention] Stopped")
	}
}

func (rs *RetentionScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.Purge(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.Purge(context.Background())
		case <-stop:
			return
		}
	}
}

// Purge deletes runs older than MaxAge and returns how many went.
func (rs *RetentionScheduler) Purge(ctx context.Context) int {
	cutoff := rs.now().Add(-rs.MaxAge)
	removed, err := rs.Runs.DeleteBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[Retention] Error purging runs before %v: %v", cutoff, err)
		return 0
	}
	if removed > 0 {
		log.Printf("[Retention] Purged %d runs created before %v", removed, cutoff.Format(time.RFC3339))
		if rs.Metrics != nil {
			rs.Metrics.RecordPurged(removed)
		}
	}
	return removed
}
