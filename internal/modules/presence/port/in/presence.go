package in

import "context"

type Usecase interface {
	// SetPresence returns immediately; delivery is best effort.
	SetPresence(activityType, activityName string)
	// Drain waits for announcements still in flight.
	Drain(ctx context.Context) error
}
