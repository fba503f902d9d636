package usecase

import (
	"context"

	"lectern/internal/modules/session/domain"
	"lectern/internal/modules/session/dto"
	sessionin "lectern/internal/modules/session/port/in"
	sessionout "lectern/internal/modules/session/port/out"
	"lectern/internal/modules/session/service"
	apperrors "lectern/internal/platform/errors"
)

type Interactor struct {
	svc *service.LifecycleService
}

func NewInteractor(svc *service.LifecycleService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.TransitionOutput, error) {
	session, started, err := i.svc.Start(ctx, input.SourceID)
	if err != nil {
		return dto.TransitionOutput{}, err
	}
	out := mapSession(session)
	return dto.TransitionOutput{Session: &out, Applied: started}, nil
}

func (i *Interactor) Pause(ctx context.Context) (dto.TransitionOutput, error) {
	return mapTransition(i.svc.Pause(ctx))
}

func (i *Interactor) Resume(ctx context.Context) (dto.TransitionOutput, error) {
	return mapTransition(i.svc.Resume(ctx))
}

func (i *Interactor) UpdateProgress(ctx context.Context, input dto.ProgressInput) (dto.TransitionOutput, error) {
	return mapTransition(i.svc.UpdateProgress(ctx, input.CurrChars))
}

func (i *Interactor) Finish(ctx context.Context) (dto.FinishOutput, error) {
	result, err := i.svc.Finish(ctx)
	if err != nil {
		return dto.FinishOutput{}, err
	}
	if !result.Applied {
		return dto.FinishOutput{}, nil
	}
	out := mapSession(result.Session)
	return dto.FinishOutput{
		Session:     &out,
		Applied:     true,
		Discarded:   result.Discarded,
		JournalPath: result.JournalPath,
	}, nil
}

func (i *Interactor) Current(ctx context.Context) (dto.SessionOutput, error) {
	session, ok, err := i.svc.Current(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if !ok {
		return dto.SessionOutput{}, apperrors.ErrNoActiveSession
	}
	return mapSession(session), nil
}

func (i *Interactor) Subscribe(fn func(*dto.SessionOutput)) (cancel func()) {
	return i.svc.Subscribe(func(session *domain.ReadingSession) {
		if session == nil {
			fn(nil)
			return
		}
		out := mapSession(*session)
		fn(&out)
	})
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.SessionOutput, error) {
	session, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return mapSession(session), nil
}

func (i *Interactor) List(ctx context.Context, input dto.ListInput) ([]dto.SessionOutput, error) {
	sessions, err := i.svc.List(ctx, sessionout.ListFilter{
		SourceID: input.SourceID,
		OpenOnly: input.OpenOnly,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, mapSession(session))
	}
	return out, nil
}

func (i *Interactor) Restore(ctx context.Context) (dto.RestoreOutput, error) {
	result, err := i.svc.Restore(ctx)
	if err != nil {
		return dto.RestoreOutput{}, err
	}
	out := dto.RestoreOutput{Orphans: result.Orphans}
	if result.Active != nil {
		active := mapSession(*result.Active)
		out.Active = &active
	}
	return out, nil
}

func mapTransition(session domain.ReadingSession, applied bool, err error) (dto.TransitionOutput, error) {
	if err != nil {
		return dto.TransitionOutput{}, err
	}
	if session.ID == "" {
		return dto.TransitionOutput{}, nil
	}
	out := mapSession(session)
	return dto.TransitionOutput{Session: &out, Applied: applied}, nil
}

func mapSession(session domain.ReadingSession) dto.SessionOutput {
	return dto.SessionOutput{
		ID:               session.ID,
		SourceID:         session.SourceID,
		InitialChars:     session.InitialChars,
		CurrChars:        session.CurrChars,
		CharsRead:        session.CharsRead(),
		TotalReadingTime: session.TotalReadingTime,
		StartTime:        session.StartTime,
		LastActiveTime:   session.LastActiveTime,
		IsPaused:         session.IsPaused,
		EndTime:          session.EndTime,
		State:            string(session.State()),
	}
}
