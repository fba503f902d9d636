package service

import (
	"context"
	"fmt"

	"lectern/internal/modules/stats/domain"
	statsout "lectern/internal/modules/stats/port/out"
	"lectern/internal/platform/clock"
	"lectern/internal/platform/reactive"
)

// Projector recomputes the reading snapshot from the local stores whenever
// the shared hub reports a change.
type Projector struct {
	clock        clock.Clock
	sessions     statsout.SessionSource
	books        statsout.BookSource
	sync         statsout.SyncSource
	connectivity statsout.ConnectivitySource
	hub          *reactive.Hub
}

func NewProjector(
	clock clock.Clock,
	sessions statsout.SessionSource,
	books statsout.BookSource,
	sync statsout.SyncSource,
	connectivity statsout.ConnectivitySource,
	hub *reactive.Hub,
) *Projector {
	return &Projector{
		clock:        clock,
		sessions:     sessions,
		books:        books,
		sync:         sync,
		connectivity: connectivity,
		hub:          hub,
	}
}

func (p *Projector) Compute(ctx context.Context) (domain.Snapshot, error) {
	sessions, err := p.sessions.All(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list sessions: %w", err)
	}
	books, err := p.books.All(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list books: %w", err)
	}
	active, err := p.sessions.Active(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("active session: %w", err)
	}
	snap := domain.Build(sessions, books, active)
	if p.sync != nil {
		if snap.Sync, err = p.sync.Current(ctx); err != nil {
			return domain.Snapshot{}, fmt.Errorf("sync status: %w", err)
		}
	}
	if p.connectivity != nil {
		snap.Connectivity = p.connectivity.State()
	}
	snap.ComputedAt = clock.Seconds(p.clock)
	return snap, nil
}

func (p *Projector) Watch(ctx context.Context, fn func(domain.Snapshot, error)) (cancel func()) {
	return reactive.Watch(ctx, p.hub, p.Compute, fn)
}
