package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"lectern/internal/modules/hub/domain"
	hubout "lectern/internal/modules/hub/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logger"
)

// Authority is the canonical copy every client reconciles against. Batch
// applies are serialized so each read-decide-write runs against a stable
// stored state.
type Authority struct {
	mu    sync.Mutex
	clock clock.Clock
	store hubout.Store
	log   *logger.Logger
}

func NewAuthority(clock clock.Clock, store hubout.Store, log *logger.Logger) *Authority {
	if log == nil {
		log = logger.Discard()
	}
	return &Authority{clock: clock, store: store, log: log}
}

func (a *Authority) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return a.store.ListSessions(ctx)
}

// ApplySessions stores every incoming session that is strictly more recent
// than the stored copy and returns the canonical copy for each submitted id,
// in submission order.
func (a *Authority) ApplySessions(ctx context.Context, incoming []domain.Session) ([]domain.Session, error) {
	ids := make([]string, 0, len(incoming))
	for _, s := range incoming {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.SourceID) == "" {
			return nil, fmt.Errorf("%w: session id and source id are required", apperrors.ErrInvalidInput)
		}
		ids = append(ids, s.ID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	stored, err := a.store.FindSessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	winners := []domain.Session{}
	canonical := make([]domain.Session, 0, len(incoming))
	for _, s := range incoming {
		current, ok := stored[s.ID]
		var currentPtr *domain.Session
		if ok {
			currentPtr = &current
		}
		if domain.SessionSupersedes(s, currentPtr) {
			stored[s.ID] = s
			winners = append(winners, s)
			canonical = append(canonical, s)
			continue
		}
		canonical = append(canonical, current)
	}
	if len(winners) > 0 {
		if err := a.store.SaveSessions(ctx, winners); err != nil {
			return nil, err
		}
	}
	a.log.Info("hub: sessions applied", "submitted", len(incoming), "accepted", len(winners))
	return canonical, nil
}

func (a *Authority) ListProgress(ctx context.Context) ([]domain.Progress, error) {
	return a.store.ListProgress(ctx)
}

func (a *Authority) ApplyProgress(ctx context.Context, incoming []domain.Progress) ([]domain.Progress, error) {
	ids := make([]string, 0, len(incoming))
	for _, p := range incoming {
		if strings.TrimSpace(p.SourceID) == "" {
			return nil, fmt.Errorf("%w: source id is required", apperrors.ErrInvalidInput)
		}
		ids = append(ids, p.SourceID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	stored, err := a.store.FindProgress(ctx, ids)
	if err != nil {
		return nil, err
	}
	winners := []domain.Progress{}
	canonical := make([]domain.Progress, 0, len(incoming))
	for _, p := range incoming {
		current, ok := stored[p.SourceID]
		var currentPtr *domain.Progress
		if ok {
			currentPtr = &current
		}
		if domain.ProgressSupersedes(p, currentPtr) {
			stored[p.SourceID] = p
			winners = append(winners, p)
			canonical = append(canonical, p)
			continue
		}
		canonical = append(canonical, current)
	}
	if len(winners) > 0 {
		if err := a.store.SaveProgress(ctx, winners); err != nil {
			return nil, err
		}
	}
	a.log.Info("hub: progress applied", "submitted", len(incoming), "accepted", len(winners))
	return canonical, nil
}

func (a *Authority) RecordPresence(ctx context.Context, presence domain.Presence) error {
	presence.ReceivedAt = clock.Seconds(a.clock)
	a.mu.Lock()
	defer a.mu.Unlock()
	stored, err := a.store.GetPresence(ctx, presence.User)
	var storedPtr *domain.Presence
	switch {
	case err == nil:
		storedPtr = &stored
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}
	if !domain.PresenceSupersedes(presence, storedPtr) {
		a.log.Debug("hub: stale presence dropped", "user", presence.User)
		return nil
	}
	return a.store.SavePresence(ctx, presence)
}

func (a *Authority) CurrentPresence(ctx context.Context, user string) (domain.Presence, error) {
	return a.store.GetPresence(ctx, user)
}

func (a *Authority) Health(ctx context.Context) error {
	return a.store.Ping(ctx)
}
