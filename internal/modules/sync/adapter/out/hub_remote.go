package out

import (
	"context"
	"time"

	"lectern/internal/modules/sync/domain"
	syncout "lectern/internal/modules/sync/port/out"
	"lectern/internal/platform/remote"
	"lectern/internal/platform/wire"
)

type HubRemote struct {
	client *remote.Client
}

func NewHubRemote(client *remote.Client) syncout.Remote {
	return &HubRemote{client: client}
}

func (r *HubRemote) FetchSessions(ctx context.Context) ([]domain.SessionRecord, error) {
	var batch wire.SessionBatch
	if err := r.client.Get(ctx, "/api/v1/sessions", &batch); err != nil {
		return nil, err
	}
	return sessionsFromWire(batch.Sessions), nil
}

func (r *HubRemote) PushSessions(ctx context.Context, records []domain.SessionRecord) ([]domain.SessionRecord, error) {
	in := wire.SessionBatch{Sessions: make([]wire.Session, 0, len(records))}
	for _, record := range records {
		in.Sessions = append(in.Sessions, SessionToWire(record))
	}
	var out wire.SessionBatch
	if err := r.client.Post(ctx, "/api/v1/sessions/batch", in, &out); err != nil {
		return nil, err
	}
	return sessionsFromWire(out.Sessions), nil
}

func (r *HubRemote) FetchProgress(ctx context.Context) ([]domain.ProgressRecord, error) {
	var batch wire.ProgressBatch
	if err := r.client.Get(ctx, "/api/v1/progress", &batch); err != nil {
		return nil, err
	}
	return progressFromWire(batch.Progress), nil
}

func (r *HubRemote) PushProgress(ctx context.Context, records []domain.ProgressRecord) ([]domain.ProgressRecord, error) {
	in := wire.ProgressBatch{Progress: make([]wire.Progress, 0, len(records))}
	for _, record := range records {
		in.Progress = append(in.Progress, ProgressToWire(record))
	}
	var out wire.ProgressBatch
	if err := r.client.Post(ctx, "/api/v1/progress/batch", in, &out); err != nil {
		return nil, err
	}
	return progressFromWire(out.Progress), nil
}

func SessionToWire(record domain.SessionRecord) wire.Session {
	out := wire.Session{
		ID:               record.ID,
		SourceID:         record.SourceID,
		InitialChars:     record.InitialChars,
		CurrChars:        record.CurrChars,
		TotalReadingTime: record.TotalReadingTime,
		StartTime:        record.StartTime.Unix(),
		LastActiveTime:   record.LastActiveTime.Unix(),
		IsPaused:         record.IsPaused,
	}
	if record.EndTime != nil {
		end := record.EndTime.Unix()
		out.EndTime = &end
	}
	return out
}

func SessionFromWire(in wire.Session) domain.SessionRecord {
	out := domain.SessionRecord{
		ID:               in.ID,
		SourceID:         in.SourceID,
		InitialChars:     in.InitialChars,
		CurrChars:        in.CurrChars,
		TotalReadingTime: in.TotalReadingTime,
		StartTime:        time.Unix(in.StartTime, 0).UTC(),
		LastActiveTime:   time.Unix(in.LastActiveTime, 0).UTC(),
		IsPaused:         in.IsPaused,
	}
	if in.EndTime != nil {
		end := time.Unix(*in.EndTime, 0).UTC()
		out.EndTime = &end
	}
	return out
}

func ProgressToWire(record domain.ProgressRecord) wire.Progress {
	return wire.Progress{
		SourceID:   record.SourceID,
		Title:      record.Title,
		CurrChars:  record.CurrChars,
		TotalChars: record.TotalChars,
		UpdatedAt:  record.UpdatedAt.Unix(),
	}
}

func ProgressFromWire(in wire.Progress) domain.ProgressRecord {
	return domain.ProgressRecord{
		SourceID:   in.SourceID,
		Title:      in.Title,
		CurrChars:  in.CurrChars,
		TotalChars: in.TotalChars,
		UpdatedAt:  time.Unix(in.UpdatedAt, 0).UTC(),
	}
}

func sessionsFromWire(in []wire.Session) []domain.SessionRecord {
	out := make([]domain.SessionRecord, 0, len(in))
	for _, s := range in {
		out = append(out, SessionFromWire(s))
	}
	return out
}

func progressFromWire(in []wire.Progress) []domain.ProgressRecord {
	out := make([]domain.ProgressRecord, 0, len(in))
	for _, p := range in {
		out = append(out, ProgressFromWire(p))
	}
	return out
}
