package domain

import "time"

type Session struct {
	ID               string
	SourceID         string
	InitialChars     int64
	CurrChars        int64
	TotalReadingTime int64
	StartTime        time.Time
	LastActiveTime   time.Time
	IsPaused         bool
	EndTime          *time.Time
}

func (s Session) Recency() time.Time {
	if s.EndTime != nil && s.EndTime.After(s.LastActiveTime) {
		return *s.EndTime
	}
	return s.LastActiveTime
}

type Progress struct {
	SourceID   string
	Title      string
	CurrChars  int64
	TotalChars int64
	UpdatedAt  time.Time
}

type Presence struct {
	User         string
	ActivityType string
	ActivityName string
	SentAt       time.Time
	ReceivedAt   time.Time
}

// SessionSupersedes reports whether incoming replaces stored. Only a strictly
// more recent copy does; on a tie the stored copy stays canonical.
func SessionSupersedes(incoming Session, stored *Session) bool {
	if stored == nil {
		return true
	}
	return incoming.Recency().After(stored.Recency())
}

func ProgressSupersedes(incoming Progress, stored *Progress) bool {
	if stored == nil {
		return true
	}
	return incoming.UpdatedAt.After(stored.UpdatedAt)
}

// PresenceSupersedes keeps the latest announcement per user; a tie goes to
// the one received last.
func PresenceSupersedes(incoming Presence, stored *Presence) bool {
	if stored == nil {
		return true
	}
	return !incoming.SentAt.Before(stored.SentAt)
}
