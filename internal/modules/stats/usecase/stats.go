package usecase

import (
	"context"

	"lectern/internal/modules/stats/domain"
	"lectern/internal/modules/stats/dto"
	statsin "lectern/internal/modules/stats/port/in"
	"lectern/internal/modules/stats/service"
)

type Interactor struct {
	projector *service.Projector
}

func NewInteractor(projector *service.Projector) statsin.Usecase {
	return &Interactor{projector: projector}
}

func (i *Interactor) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	snap, err := i.projector.Compute(ctx)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	return mapSnapshot(snap), nil
}

func (i *Interactor) Watch(ctx context.Context, fn func(dto.SnapshotOutput, error)) (cancel func()) {
	return i.projector.Watch(ctx, func(snap domain.Snapshot, err error) {
		if err != nil {
			fn(dto.SnapshotOutput{}, err)
			return
		}
		fn(mapSnapshot(snap), nil)
	})
}

func mapSnapshot(snap domain.Snapshot) dto.SnapshotOutput {
	out := dto.SnapshotOutput{
		Sessions:         snap.Sessions,
		TotalReadingTime: snap.TotalReadingTime,
		CharsRead:        snap.CharsRead,
		Books:            make([]dto.BookOutput, 0, len(snap.Books)),
		Sync: dto.SyncOutput{
			IsSyncing:  snap.Sync.IsSyncing,
			Error:      snap.Sync.Error,
			LastSyncAt: snap.Sync.LastSyncAt,
			Pending:    snap.Sync.Pending,
		},
		Connectivity: snap.Connectivity,
		ComputedAt:   snap.ComputedAt,
	}
	for _, b := range snap.Books {
		out.Books = append(out.Books, dto.BookOutput{
			SourceID:    b.SourceID,
			Title:       b.Title,
			CurrChars:   b.CurrChars,
			TotalChars:  b.TotalChars,
			Percent:     b.Percent,
			Sessions:    b.Sessions,
			ReadingTime: b.ReadingTime,
		})
	}
	if snap.Active != nil {
		out.Active = &dto.ActiveOutput{
			SessionID:        snap.Active.ID,
			SourceID:         snap.Active.SourceID,
			Title:            snap.Active.Title,
			State:            snap.Active.State,
			CharsRead:        snap.Active.CharsRead,
			TotalReadingTime: snap.Active.TotalReadingTime,
		}
	}
	return out
}
