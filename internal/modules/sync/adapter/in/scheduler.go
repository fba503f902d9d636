package in

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	connin "lectern/internal/modules/connectivity/port/in"
	syncin "lectern/internal/modules/sync/port/in"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logger"
)

const runTimeout = 2 * time.Minute

// Scheduler runs a sync on a cron schedule. Each run probes connectivity
// first so a client that came back online starts syncing again.
type Scheduler struct {
	sync         syncin.Usecase
	connectivity connin.Usecase
	log          *logger.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

func NewScheduler(syncer syncin.Usecase, connectivity connin.Usecase, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		sync:         syncer,
		connectivity: connectivity,
		log:          log,
		cron:         cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateSchedule parses a five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("%w: cron schedule %q: %v", apperrors.ErrInvalidInput, schedule, err)
	}
	return nil
}

// Start registers the job and starts the cron loop. The scheduler stops when
// ctx is done.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}
	entryID, err := s.cron.AddFunc(schedule, func() { s.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("schedule sync job: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	s.log.Info("sync scheduler: started", "schedule", schedule, "next_run", s.nextRunLocked())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false
	s.log.Info("sync scheduler: stopped")
}

func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunLocked()
}

func (s *Scheduler) nextRunLocked() *time.Time {
	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

// RunOnce probes connectivity and syncs, logging the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()
	if _, err := s.connectivity.Probe(ctx); err != nil {
		s.log.Debug("sync scheduler: probe failed", "err", err)
	}
	result, err := s.sync.Sync(ctx)
	switch {
	case errors.Is(err, apperrors.ErrSyncInProgress):
		s.log.Debug("sync scheduler: skipped, already syncing")
	case errors.Is(err, apperrors.ErrOffline), errors.Is(err, apperrors.ErrUnauthorized):
		s.log.Info("sync scheduler: skipped", "reason", err)
	case err != nil:
		s.log.Warn("sync scheduler: run failed", "err", err)
	default:
		s.log.Debug("sync scheduler: run completed", "pushed_sessions", result.PushedSessions, "pulled_sessions", result.PulledSessions)
	}
}
