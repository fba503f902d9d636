package dto

import "time"

type BookOutput struct {
	SourceID    string
	Title       string
	CurrChars   int64
	TotalChars  int64
	Percent     float64
	Sessions    int
	ReadingTime int64
}

type ActiveOutput struct {
	SessionID        string
	SourceID         string
	Title            string
	State            string
	CharsRead        int64
	TotalReadingTime int64
}

type SyncOutput struct {
	IsSyncing  bool
	Error      string
	LastSyncAt time.Time
	Pending    int
}

type SnapshotOutput struct {
	Sessions         int
	TotalReadingTime int64
	CharsRead        int64
	Books            []BookOutput
	Active           *ActiveOutput
	Sync             SyncOutput
	Connectivity     string
	ComputedAt       time.Time
}
