package domain

import "time"

// SessionRecord is the replicated form of a reading session.
type SessionRecord struct {
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

// Recency is max(LastActiveTime, EndTime).
func (r SessionRecord) Recency() time.Time {
	if r.EndTime != nil && r.EndTime.After(r.LastActiveTime) {
		return *r.EndTime
	}
	return r.LastActiveTime
}

func (r SessionRecord) Equal(o SessionRecord) bool {
	if (r.EndTime == nil) != (o.EndTime == nil) {
		return false
	}
	if r.EndTime != nil && !r.EndTime.Equal(*o.EndTime) {
		return false
	}
	return r.ID == o.ID &&
		r.SourceID == o.SourceID &&
		r.InitialChars == o.InitialChars &&
		r.CurrChars == o.CurrChars &&
		r.TotalReadingTime == o.TotalReadingTime &&
		r.StartTime.Equal(o.StartTime) &&
		r.LastActiveTime.Equal(o.LastActiveTime) &&
		r.IsPaused == o.IsPaused
}

// ProgressRecord is the replicated per-book position.
type ProgressRecord struct {
	SourceID   string
	Title      string
	CurrChars  int64
	TotalChars int64
	UpdatedAt  time.Time
}

func (r ProgressRecord) Equal(o ProgressRecord) bool {
	return r.SourceID == o.SourceID &&
		r.Title == o.Title &&
		r.CurrChars == o.CurrChars &&
		r.TotalChars == o.TotalChars &&
		r.UpdatedAt.Equal(o.UpdatedAt)
}

// LocalSession is a session as read from the local store together with its
// pending-upload flag.
type LocalSession struct {
	Record SessionRecord
	Dirty  bool
}

type LocalProgress struct {
	Record ProgressRecord
	Dirty  bool
}
