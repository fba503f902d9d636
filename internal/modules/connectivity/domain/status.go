package domain

import "time"

type State string

const (
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
	StateOffline         State = "offline"
)

// Status is what the client last learned about the hub.
type Status struct {
	State     State
	Online    bool
	User      string
	Detail    string
	CheckedAt time.Time
}

// CanReachRemote reports whether authenticated calls to the hub make sense.
func (s Status) CanReachRemote() bool {
	return s.State == StateAuthenticated && s.Online
}
