package service

import (
	"context"
	"sync"
	"time"

	"lectern/internal/modules/presence/domain"
	presenceout "lectern/internal/modules/presence/port/out"
	"lectern/internal/platform/clock"
	"lectern/internal/platform/logger"
)

const defaultSendTimeout = 5 * time.Second

// Announcer pushes presence to the hub in the background. Failures are
// logged and dropped; nothing is retried.
type Announcer struct {
	clock     clock.Clock
	gate      presenceout.Gate
	transport presenceout.Transport
	log       *logger.Logger
	timeout   time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewAnnouncer(clock clock.Clock, gate presenceout.Gate, transport presenceout.Transport, timeout time.Duration, log *logger.Logger) *Announcer {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Announcer{clock: clock, gate: gate, transport: transport, log: log, timeout: timeout}
}

// SetPresence is a no-op unless the gate is open. The send runs detached from
// the caller with its own deadline.
func (a *Announcer) SetPresence(activityType, activityName string) bool {
	if !a.gate.CanAnnounce() {
		a.log.Debug("presence: skipped, not connected", "activity_type", activityType)
		return false
	}
	announcement := domain.Announcement{
		ActivityType: activityType,
		ActivityName: activityName,
		SentAt:       clock.Seconds(a.clock),
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.log.Debug("presence: skipped, shutting down", "activity_type", activityType)
		return false
	}
	a.inflight.Add(1)
	a.mu.Unlock()
	go func() {
		defer a.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.transport.Send(ctx, announcement); err != nil {
			a.log.Warn("presence: announce failed", "activity_type", activityType, "err", err)
			return
		}
		a.log.Debug("presence: announced", "activity_type", activityType, "activity_name", activityName)
	}()
	return true
}

// Drain stops accepting announcements and waits for in-flight sends until
// ctx is done.
func (a *Announcer) Drain(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	done := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
