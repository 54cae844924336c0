package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/backrose/backrose/internal/auth/store"
)

// HousekeepingService periodically purges revocation entries whose tokens
// have expired anyway, so the revocation list does not grow without bound.
type HousekeepingService struct {
	Revocations store.Revocations
	Logger      *slog.Logger
	Interval    time.Duration
	Now         func() time.Time

	// OnPurge, when set, receives the number of entries removed per run.
	OnPurge func(n int64)

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(revocations store.Revocations, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Revocations: revocations,
		Logger:      logger,
		Interval:    interval,
		Now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual deletion of expired records.
func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	s.Logger.Debug("starting housekeeping cleanup")

	n, err := s.Revocations.PurgeExpired(ctx, s.Now())
	if err != nil {
		s.Logger.Error("failed to purge expired revocations", "error", err)
		return
	}
	if s.OnPurge != nil {
		s.OnPurge(n)
	}

	s.Logger.Info("housekeeping cleanup completed", "purged_revocations", n)
}
