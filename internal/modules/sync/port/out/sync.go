package out

import (
	"context"

	"lectern/internal/modules/sync/domain"
)

// Remote is the authority every client reconciles against. Push calls return
// the hub's canonical copy of every submitted record.
type Remote interface {
	FetchSessions(ctx context.Context) ([]domain.SessionRecord, error)
	PushSessions(ctx context.Context, records []domain.SessionRecord) ([]domain.SessionRecord, error)
	FetchProgress(ctx context.Context) ([]domain.ProgressRecord, error)
	PushProgress(ctx context.Context, records []domain.ProgressRecord) ([]domain.ProgressRecord, error)
}

type LocalStore interface {
	Sessions(ctx context.Context) ([]domain.LocalSession, error)
	Progress(ctx context.Context) ([]domain.LocalProgress, error)
	// Apply writes all changes in one transaction. A pull only lands if the
	// local copy still matches its Expected version.
	Apply(ctx context.Context, changes domain.Changes) (domain.Applied, error)
	Pending(ctx context.Context) (int, error)
}

// ActiveSession names the session currently owned by the lifecycle, if any.
type ActiveSession interface {
	ActiveID(ctx context.Context) (string, error)
}

// Gate fails fast with apperrors.ErrOffline or apperrors.ErrUnauthorized.
type Gate interface {
	Check() error
}

type ActivityQuery struct {
	Limit int
}

type ActivityStore interface {
	Append(ctx context.Context, activity domain.Activity) error
	Tail(ctx context.Context, query ActivityQuery) ([]domain.Activity, error)
}
