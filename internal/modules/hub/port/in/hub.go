package in

import (
	"context"

	"lectern/internal/platform/wire"
)

type Usecase interface {
	ListSessions(ctx context.Context) ([]wire.Session, error)
	ApplySessions(ctx context.Context, sessions []wire.Session) ([]wire.Session, error)
	ListProgress(ctx context.Context) ([]wire.Progress, error)
	ApplyProgress(ctx context.Context, progress []wire.Progress) ([]wire.Progress, error)
	RecordPresence(ctx context.Context, user string, frame wire.Presence) error
	CurrentPresence(ctx context.Context, user string) (wire.Presence, error)
	Health(ctx context.Context) error
}
