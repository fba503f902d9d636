package dto

import "time"

type ResultOutput struct {
	PushedSessions int
	PulledSessions int
	PushedProgress int
	PulledProgress int
	Excluded       int
	Stale          int
}

type StatusOutput struct {
	IsSyncing  bool
	Error      string
	LastSyncAt time.Time
	LastResult ResultOutput
	Pending    int
}

type ActivityOutput struct {
	ID         string
	OccurredAt time.Time
	Type       string
	Message    string
	Fields     map[string]string
}
