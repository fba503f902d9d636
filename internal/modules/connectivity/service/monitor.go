package service

import (
	"context"
	"errors"

	"lectern/internal/modules/connectivity/domain"
	connout "lectern/internal/modules/connectivity/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logger"
	"lectern/internal/platform/reactive"
)

// Monitor holds the auth and network flags other components gate on. Until
// the first probe the client is considered offline.
type Monitor struct {
	clock  clock.Clock
	remote connout.Remote
	log    *logger.Logger
	status *reactive.Value[domain.Status]
}

func NewMonitor(clock clock.Clock, remote connout.Remote, hub *reactive.Hub, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.Discard()
	}
	initial := domain.Status{State: domain.StateOffline, Detail: "not checked yet"}
	if !remote.HasToken() {
		initial = domain.Status{State: domain.StateUnauthenticated, Detail: "no token configured"}
	}
	return &Monitor{
		clock:  clock,
		remote: remote,
		log:    log,
		status: reactive.NewValue(hub, initial),
	}
}

func (m *Monitor) Status() domain.Status {
	return m.status.Get()
}

func (m *Monitor) Subscribe(fn func(domain.Status)) (cancel func()) {
	return m.status.Subscribe(fn)
}

// Set replaces the status directly; used by callers that learn about the
// network from their own requests.
func (m *Monitor) Set(status domain.Status) {
	m.status.Set(status)
}

// Probe checks the hub and records the result. The returned error is the
// probe failure, if any; the status is updated either way.
func (m *Monitor) Probe(ctx context.Context) (domain.Status, error) {
	now := clock.Seconds(m.clock)
	next, err := m.probe(ctx)
	next.CheckedAt = now
	prev := m.status.Get()
	m.status.Set(next)
	if prev.State != next.State || prev.Online != next.Online {
		m.log.Info("connectivity: state changed", "state", next.State, "online", next.Online, "detail", next.Detail)
	}
	return next, err
}

func (m *Monitor) probe(ctx context.Context) (domain.Status, error) {
	if err := m.remote.Health(ctx); err != nil {
		return domain.Status{State: domain.StateOffline, Detail: err.Error()}, err
	}
	if !m.remote.HasToken() {
		return domain.Status{State: domain.StateUnauthenticated, Online: true, Detail: "no token configured"}, nil
	}
	user, err := m.remote.Me(ctx)
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return domain.Status{State: domain.StateUnauthenticated, Online: true, Detail: "token rejected"}, nil
	case err != nil:
		return domain.Status{State: domain.StateOffline, Detail: err.Error()}, err
	}
	return domain.Status{State: domain.StateAuthenticated, Online: true, User: user}, nil
}
