package usecase

import (
	"context"

	"lectern/internal/modules/sync/domain"
	"lectern/internal/modules/sync/dto"
	syncin "lectern/internal/modules/sync/port/in"
	"lectern/internal/modules/sync/service"
)

type Interactor struct {
	reconciler *service.Reconciler
}

func NewInteractor(reconciler *service.Reconciler) syncin.Usecase {
	return &Interactor{reconciler: reconciler}
}

func (i *Interactor) Sync(ctx context.Context) (dto.ResultOutput, error) {
	result, err := i.reconciler.Sync(ctx)
	return mapResult(result), err
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	out := mapStatus(i.reconciler.Status())
	pending, err := i.reconciler.Pending(ctx)
	if err != nil {
		return out, err
	}
	out.Pending = pending
	return out, nil
}

func (i *Interactor) Subscribe(fn func(dto.StatusOutput)) (cancel func()) {
	return i.reconciler.Subscribe(func(status domain.Status) { fn(mapStatus(status)) })
}

func (i *Interactor) Activity(ctx context.Context, limit int) ([]dto.ActivityOutput, error) {
	events, err := i.reconciler.Activity(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityOutput, 0, len(events))
	for _, event := range events {
		out = append(out, dto.ActivityOutput{
			ID:         event.ID,
			OccurredAt: event.OccurredAt,
			Type:       event.Type,
			Message:    event.Message,
			Fields:     event.Fields,
		})
	}
	return out, nil
}

func mapStatus(status domain.Status) dto.StatusOutput {
	return dto.StatusOutput{
		IsSyncing:  status.IsSyncing,
		Error:      status.Error,
		LastSyncAt: status.LastSyncAt,
		LastResult: mapResult(status.LastResult),
	}
}

func mapResult(result domain.Result) dto.ResultOutput {
	return dto.ResultOutput{
		PushedSessions: result.PushedSessions,
		PulledSessions: result.PulledSessions,
		PushedProgress: result.PushedProgress,
		PulledProgress: result.PulledProgress,
		Excluded:       result.Excluded,
		Stale:          result.Stale,
	}
}
