package accounts

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// PurgeAge is how long an unactivated account survives before the sweep
// removes it.
const PurgeAge = 3 * 24 * time.Hour

// RemoveNotActivatedUsers deletes every account that is not activated,
// still holds an activation key, and was created more than three days ago.
// Failures are handled record by record: one bad row does not abort the
// rest of the sweep. Returns the number of accounts removed.
func (m *AccountManager) RemoveNotActivatedUsers(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-PurgeAge)

	stale, err := m.repo.Users().FindNotActivatedBefore(ctx, cutoff)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list stale unactivated accounts")
	}

	removed := 0
	for _, account := range stale {
		if err := m.repo.Users().DeleteByID(ctx, account.ID); err != nil {
			m.logger.Warn("failed to delete stale unactivated account",
				"login", account.Login, "error", err)
			continue
		}
		m.logger.Debug("deleted not activated account", "login", account.Login)
		removed++
	}

	return removed, nil
}

// Sweeper fires the purge once per day at a fixed local hour. It is owned
// by the process lifecycle: Start on service init, Stop (or context cancel)
// on shutdown. A tick that arrives while the previous sweep is still
// running is skipped, not queued.
type Sweeper struct {
	manager *AccountManager
	hour    int
	logger  Logger
	now     func() time.Time

	running sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
	mu      sync.Mutex
}

// NewSweeper creates a sweeper that runs the purge daily at the given local
// hour (0-23).
func NewSweeper(manager *AccountManager, hour int) *Sweeper {
	return &Sweeper{
		manager: manager,
		hour:    hour,
		logger:  defLogger{},
		now:     time.Now,
	}
}

// WithLogger overrides the sweeper logger.
func (s *Sweeper) WithLogger(logger Logger) *Sweeper {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *Sweeper) WithClock(clock func() time.Time) *Sweeper {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Start launches the background timer loop. Calling Start twice is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(ctx)
}

// Stop terminates the timer loop and waits for it to exit. A sweep already
// in flight finishes on its own goroutine.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	close(s.stop)
	<-s.done
}

// RunOnce triggers a sweep immediately, honoring the skip-if-running rule.
// Exposed so tests and operators can invoke the purge without waiting for
// the daily tick.
func (s *Sweeper) RunOnce(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn("purge sweep still running, skipping")
		return
	}
	defer s.running.Unlock()

	removed, err := s.manager.RemoveNotActivatedUsers(ctx)
	if err != nil {
		s.logger.Error("purge sweep failed", "error", err)
		return
	}

	s.logger.Info("purge sweep finished", "removed", removed)
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	for {
		timer := time.NewTimer(s.untilNextRun())

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// untilNextRun computes the wait until the next occurrence of the
// configured local hour.
func (s *Sweeper) untilNextRun() time.Duration {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
