package out

import (
	"context"

	"lectern/internal/modules/presence/domain"
)

type Transport interface {
	Send(ctx context.Context, announcement domain.Announcement) error
}

// Gate reports whether the user is signed in and the hub is reachable.
type Gate interface {
	CanAnnounce() bool
}
