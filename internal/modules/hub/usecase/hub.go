package usecase

import (
	"context"
	"time"

	"lectern/internal/modules/hub/domain"
	hubin "lectern/internal/modules/hub/port/in"
	"lectern/internal/modules/hub/service"
	"lectern/internal/platform/wire"
)

type Interactor struct {
	authority *service.Authority
}

func NewInteractor(authority *service.Authority) hubin.Usecase {
	return &Interactor{authority: authority}
}

func (i *Interactor) ListSessions(ctx context.Context) ([]wire.Session, error) {
	sessions, err := i.authority.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return sessionsToWire(sessions), nil
}

func (i *Interactor) ApplySessions(ctx context.Context, in []wire.Session) ([]wire.Session, error) {
	incoming := make([]domain.Session, 0, len(in))
	for _, s := range in {
		incoming = append(incoming, sessionFromWire(s))
	}
	canonical, err := i.authority.ApplySessions(ctx, incoming)
	if err != nil {
		return nil, err
	}
	return sessionsToWire(canonical), nil
}

func (i *Interactor) ListProgress(ctx context.Context) ([]wire.Progress, error) {
	progress, err := i.authority.ListProgress(ctx)
	if err != nil {
		return nil, err
	}
	return progressToWire(progress), nil
}

func (i *Interactor) ApplyProgress(ctx context.Context, in []wire.Progress) ([]wire.Progress, error) {
	incoming := make([]domain.Progress, 0, len(in))
	for _, p := range in {
		incoming = append(incoming, domain.Progress{
			SourceID:   p.SourceID,
			Title:      p.Title,
			CurrChars:  p.CurrChars,
			TotalChars: p.TotalChars,
			UpdatedAt:  unix(p.UpdatedAt),
		})
	}
	canonical, err := i.authority.ApplyProgress(ctx, incoming)
	if err != nil {
		return nil, err
	}
	return progressToWire(canonical), nil
}

func (i *Interactor) RecordPresence(ctx context.Context, user string, frame wire.Presence) error {
	return i.authority.RecordPresence(ctx, domain.Presence{
		User:         user,
		ActivityType: frame.ActivityType,
		ActivityName: frame.ActivityName,
		SentAt:       unix(frame.SentAt),
	})
}

func (i *Interactor) CurrentPresence(ctx context.Context, user string) (wire.Presence, error) {
	presence, err := i.authority.CurrentPresence(ctx, user)
	if err != nil {
		return wire.Presence{}, err
	}
	return wire.Presence{
		Type:         wire.FramePresence,
		ActivityType: presence.ActivityType,
		ActivityName: presence.ActivityName,
		SentAt:       presence.SentAt.Unix(),
	}, nil
}

func (i *Interactor) Health(ctx context.Context) error {
	return i.authority.Health(ctx)
}

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func sessionFromWire(in wire.Session) domain.Session {
	out := domain.Session{
		ID:               in.ID,
		SourceID:         in.SourceID,
		InitialChars:     in.InitialChars,
		CurrChars:        in.CurrChars,
		TotalReadingTime: in.TotalReadingTime,
		StartTime:        unix(in.StartTime),
		LastActiveTime:   unix(in.LastActiveTime),
		IsPaused:         in.IsPaused,
	}
	if in.EndTime != nil {
		end := unix(*in.EndTime)
		out.EndTime = &end
	}
	return out
}

func sessionsToWire(sessions []domain.Session) []wire.Session {
	out := make([]wire.Session, 0, len(sessions))
	for _, s := range sessions {
		w := wire.Session{
			ID:               s.ID,
			SourceID:         s.SourceID,
			InitialChars:     s.InitialChars,
			CurrChars:        s.CurrChars,
			TotalReadingTime: s.TotalReadingTime,
			StartTime:        s.StartTime.Unix(),
			LastActiveTime:   s.LastActiveTime.Unix(),
			IsPaused:         s.IsPaused,
		}
		if s.EndTime != nil {
			end := s.EndTime.Unix()
			w.EndTime = &end
		}
		out = append(out, w)
	}
	return out
}

func progressToWire(progress []domain.Progress) []wire.Progress {
	out := make([]wire.Progress, 0, len(progress))
	for _, p := range progress {
		out = append(out, wire.Progress{
			SourceID:   p.SourceID,
			Title:      p.Title,
			CurrChars:  p.CurrChars,
			TotalChars: p.TotalChars,
			UpdatedAt:  p.UpdatedAt.Unix(),
		})
	}
	return out
}
