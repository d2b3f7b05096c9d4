/*
scheduler.go - Automated leave status refresh

PURPOSE:
  The status of a leave (PLANNED/ACTIVE/ENDED) is a function of the date
  range and "today", so the cached status column drifts every midnight.
  Reads always derive the status on the fly; this scheduler keeps the stored
  column in sync for reports and ad-hoc SQL.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Rewrites only rows whose derived status differs from the stored one
  - Safe to run concurrently with normal traffic (single writer lock)

USAGE:
  scheduler := NewStatusScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RefreshStatuses endpoint (manual trigger)
  - store/sqlite: RefreshLeaveStatuses
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pliniou/Project-Ausencias/store/sqlite"
)

// StatusScheduler periodically reconciles the cached leave status column.
type StatusScheduler struct {
	Store         *sqlite.Store
	Log           *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStatusScheduler creates a scheduler with the default hourly interval.
func NewStatusScheduler(store *sqlite.Store, log *slog.Logger) *StatusScheduler {
	return &StatusScheduler{
		Store:         store,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ss *StatusScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		ss.Log.Info("status scheduler disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)
	go ss.run()

	ss.Log.Info("status scheduler started", slog.Duration("interval", ss.CheckInterval))
}

// Stop stops the scheduler and waits for the worker to exit. Calling it again
// is a no-op.
func (ss *StatusScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		ss.ticker = nil
		close(ss.stop)
		ss.wg.Wait()
		ss.Log.Info("status scheduler stopped")
	}
}

func (ss *StatusScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start so a long-stopped server catches up.
	ss.refresh()

	for {
		select {
		case <-ss.ticker.C:
			ss.refresh()
		case <-ss.stop:
			return
		}
	}
}

func (ss *StatusScheduler) refresh() {
	n, err := ss.Store.RefreshLeaveStatuses(context.Background())
	if err != nil {
		ss.Log.Error("status refresh failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		ss.Log.Info("leave statuses refreshed", slog.Int("updated", n))
	}
}

// RunNow triggers an immediate refresh (for testing/admin).
func (ss *StatusScheduler) RunNow() {
	ss.refresh()
}
