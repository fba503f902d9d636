package out

import (
	"context"

	"lectern/internal/modules/hub/domain"
)

type Store interface {
	ListSessions(ctx context.Context) ([]domain.Session, error)
	FindSessions(ctx context.Context, ids []string) (map[string]domain.Session, error)
	SaveSessions(ctx context.Context, sessions []domain.Session) error
	ListProgress(ctx context.Context) ([]domain.Progress, error)
	FindProgress(ctx context.Context, sourceIDs []string) (map[string]domain.Progress, error)
	SaveProgress(ctx context.Context, progress []domain.Progress) error
	// GetPresence returns apperrors.ErrNotFound when user never announced.
	GetPresence(ctx context.Context, user string) (domain.Presence, error)
	SavePresence(ctx context.Context, presence domain.Presence) error
	Ping(ctx context.Context) error
}
