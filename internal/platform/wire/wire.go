// Package wire holds the JSON shapes exchanged with the hub. Timestamps are
// epoch seconds.
package wire

type Session struct {
	ID               string `json:"id"`
	SourceID         string `json:"sourceId"`
	InitialChars     int64  `json:"initialChars"`
	CurrChars        int64  `json:"currChars"`
	TotalReadingTime int64  `json:"totalReadingTime"`
	StartTime        int64  `json:"startTime"`
	EndTime          *int64 `json:"endTime,omitempty"`
	LastActiveTime   int64  `json:"lastActiveTime"`
	IsPaused         bool   `json:"isPaused"`
}

type Progress struct {
	SourceID   string `json:"sourceId"`
	Title      string `json:"title"`
	CurrChars  int64  `json:"currChars"`
	TotalChars int64  `json:"totalChars"`
	UpdatedAt  int64  `json:"updatedAt"`
}

type SessionBatch struct {
	Sessions []Session `json:"sessions"`
}

type ProgressBatch struct {
	Progress []Progress `json:"progress"`
}

const FramePresence = "presence"

type Presence struct {
	Type         string `json:"type"`
	ActivityType string `json:"activityType"`
	ActivityName string `json:"activityName"`
	SentAt       int64  `json:"sentAt"`
}

type Me struct {
	User string `json:"user"`
}
