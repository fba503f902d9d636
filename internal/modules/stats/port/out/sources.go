package out

import (
	"context"

	"lectern/internal/modules/stats/domain"
)

type SessionSource interface {
	All(ctx context.Context) ([]domain.SessionFact, error)
	// Active returns nil when no session is running or paused.
	Active(ctx context.Context) (*domain.SessionFact, error)
}

type BookSource interface {
	All(ctx context.Context) ([]domain.BookFact, error)
}

type SyncSource interface {
	Current(ctx context.Context) (domain.SyncLine, error)
}

type ConnectivitySource interface {
	State() string
}
