package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// DefaultReapInterval is how often expired sessions are dropped
const DefaultReapInterval = 10 * time.Minute

// Reaper drops sessions that expired before now and reports how many
type Reaper interface {
	Reap(now time.Time) int
}

// SessionReaper periodically clears expired admin sessions from stores that
// have no TTL of their own (the in-memory store).
type SessionReaper struct {
	store    Reaper
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(store Reaper, log logger.Logger, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}

	return &SessionReaper{
		store:    store,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reaping process
func (sr *SessionReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.Collect()
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper. Safe to call more than once.
func (sr *SessionReaper) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

// Collect removes expired sessions once and returns how many were dropped
func (sr *SessionReaper) Collect() int {
	removed := sr.store.Reap(sr.now())
	if removed > 0 {
		sr.logger.Info("expired admin sessions reaped",
			logger.Int("sessions_removed", removed))
	} else {
		sr.logger.Debug("no sessions to reap")
	}
	return removed
}
