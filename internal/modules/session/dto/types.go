package dto

import "time"

type StartInput struct {
	SourceID string
}

type ProgressInput struct {
	CurrChars int64
}

type ListInput struct {
	SourceID string
	OpenOnly bool
	Limit    int
}

type SessionOutput struct {
	ID               string
	SourceID         string
	InitialChars     int64
	CurrChars        int64
	CharsRead        int64
	TotalReadingTime int64
	StartTime        time.Time
	LastActiveTime   time.Time
	IsPaused         bool
	EndTime          *time.Time
	State            string
}

// TransitionOutput reports the session after a lifecycle call. Applied is
// false when the call was a no-op; Session is nil when nothing is active.
type TransitionOutput struct {
	Session *SessionOutput
	Applied bool
}

type FinishOutput struct {
	Session     *SessionOutput
	Applied     bool
	Discarded   bool
	JournalPath string
}

type RestoreOutput struct {
	Active  *SessionOutput
	Orphans int
}
