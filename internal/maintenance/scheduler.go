// Package maintenance keeps the URL history database healthy: it prunes
// sightings past the retention window and reclaims file space on a
// fixed schedule.
package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/marvin/internal/output"
)

const vacuumTimeout = 5 * time.Minute

// Scheduler runs periodic maintenance on the URL history database.
// A zero retention keeps every sighting forever; VACUUM still runs.
type Scheduler struct {
	db        *sql.DB
	logger    output.Logger
	interval  time.Duration
	retention time.Duration

	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup

	mu         sync.Mutex
	running    bool
	lastVacuum time.Time
}

// New creates a scheduler over the given database handle.
func New(db *sql.DB, logger output.Logger, interval, retention time.Duration) *Scheduler {
	return &Scheduler{
		db:        db,
		logger:    logger,
		interval:  interval,
		retention: retention,
		done:      make(chan struct{}),
	}
}

// Start launches the maintenance loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("URL history maintenance every %v (retention %v)", s.interval, s.retention)
	s.ticker = time.NewTicker(s.interval)

	s.wg.Add(1)
	go s.run()
	return nil
}

// Stop stops the loop and waits for any in-progress pass to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.running = false
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
	if s.ticker != nil {
		s.ticker.Stop()
	}
	return nil
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastVacuum returns when the last successful VACUUM finished.
func (s *Scheduler) LastVacuum() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVacuum
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			if err := s.pruneSightings(); err != nil {
				s.logger.Error("URL history pruning failed: %v", err)
			}
			if err := s.vacuum(); err != nil {
				s.logger.Error("VACUUM failed: %v", err)
			}
		}
	}
}

// pruneSightings deletes URL sightings older than the retention window.
func (s *Scheduler) pruneSightings() error {
	if s.retention <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-s.retention).Unix()
	result, err := s.db.Exec(`DELETE FROM urls WHERE seen < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune old sightings: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		s.logger.Info("Pruned %d URL sightings older than %v", n, s.retention)
	}
	return nil
}

// vacuum reclaims file space. VACUUM takes a whole-database lock, so it
// runs with a timeout rather than indefinitely.
func (s *Scheduler) vacuum() error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), vacuumTimeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		_, err := s.db.ExecContext(ctx, "VACUUM")
		errChan <- err
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("VACUUM failed: %w", err)
		}
		s.mu.Lock()
		s.lastVacuum = time.Now()
		s.mu.Unlock()
		s.logger.Debug("VACUUM completed in %.2f seconds", time.Since(start).Seconds())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("VACUUM timed out after %v", vacuumTimeout)
	}
}
