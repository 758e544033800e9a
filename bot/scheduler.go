package bot

import (
	"log/slog"
	"sync"
	"time"

	"modbot/metrics"
	"modbot/restriction"
	"modbot/utils/database"

	"github.com/jmoiron/sqlx"
)

const (
	defaultSweepInterval = 10 * time.Minute
	retentionInterval    = 24 * time.Hour
	// LedgerRetention is how long moderation actions are kept.
	LedgerRetention = 90 * 24 * time.Hour
)

// Scheduler runs the housekeeping of the bot.
type Scheduler struct {
	store    *restriction.Store
	db       *sqlx.DB
	interval time.Duration
	now      func() time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewScheduler creates a scheduler. A zero interval uses the default.
func NewScheduler(store *restriction.Store, db *sqlx.DB, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Scheduler{
		store:    store,
		db:       db,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.startSweeper()
	go s.startRetention()
}

// Stop terminates all scheduled tasks gracefully. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		slog.Info("stopping scheduler")
		close(s.done)
		s.wg.Wait()
	})
}

func (s *Scheduler) startSweeper() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) startRetention() {
	defer s.wg.Done()
	s.prune()
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.done:
			return
		}
	}
}

// sweep drops expired restrictions and refreshes the gauge.
func (s *Scheduler) sweep() int {
	removed := s.store.Sweep(s.now())
	metrics.RestrictionsActive.Set(float64(s.store.Len()))
	if removed > 0 {
		slog.Debug("swept expired voice restrictions", "removed", removed)
	}
	return removed
}

func (s *Scheduler) prune() int64 {
	if s.db == nil {
		return 0
	}
	n, err := database.DeleteModActionsBefore(s.db, s.now().Add(-LedgerRetention))
	if err != nil {
		slog.Error("failed to prune moderation ledger", "error", err)
		return 0
	}
	if n > 0 {
		slog.Info("pruned moderation ledger", "removed", n)
	}
	return n
}
