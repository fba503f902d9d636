package domain

import "time"

// Status is the observable state of the reconciler.
type Status struct {
	IsSyncing  bool
	Error      string
	LastSyncAt time.Time
	LastResult Result
}

// Changes is every local effect of one run, applied atomically.
type Changes struct {
	SessionPulls  []SessionPull
	SessionClean  []SessionRecord
	ProgressPulls []ProgressPull
	ProgressClean []ProgressRecord
	SyncedAt      time.Time
}

// Applied counts the writes that landed. Writes whose expected version no
// longer matches the local copy are counted as stale and left for the next
// run.
type Applied struct {
	Sessions int
	Progress int
	Cleaned  int
	Stale    int
}

type Result struct {
	PushedSessions int
	PulledSessions int
	PushedProgress int
	PulledProgress int
	Excluded       int
	Stale          int
}

const (
	ActivitySyncApplied = "sync.applied"
	ActivitySyncFailed  = "sync.failed"
	ActivitySyncSkipped = "sync.skipped"
)

type Activity struct {
	ID         string            `json:"id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Type       string            `json:"type"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
}
