package domain

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

// ReadingSession is one continuous reading span of a book. Times are UTC at
// whole-second precision; TotalReadingTime is in seconds.
type ReadingSession struct {
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

// NewSession opens a running session positioned at chars.
func NewSession(id, sourceID string, chars int64, now time.Time) (ReadingSession, error) {
	if strings.TrimSpace(id) == "" {
		return ReadingSession{}, fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(sourceID) == "" {
		return ReadingSession{}, fmt.Errorf("source id is required")
	}
	if chars < 0 {
		return ReadingSession{}, fmt.Errorf("character offset must be non-negative")
	}
	return ReadingSession{
		ID:             id,
		SourceID:       sourceID,
		InitialChars:   chars,
		CurrChars:      chars,
		StartTime:      now,
		LastActiveTime: now,
	}, nil
}

func (s ReadingSession) IsOpen() bool {
	return s.EndTime == nil
}

// Equal compares every field, times by instant.
func (s ReadingSession) Equal(o ReadingSession) bool {
	sameEnd := s.EndTime == nil && o.EndTime == nil ||
		s.EndTime != nil && o.EndTime != nil && s.EndTime.Equal(*o.EndTime)
	return sameEnd &&
		s.ID == o.ID &&
		s.SourceID == o.SourceID &&
		s.InitialChars == o.InitialChars &&
		s.CurrChars == o.CurrChars &&
		s.TotalReadingTime == o.TotalReadingTime &&
		s.StartTime.Equal(o.StartTime) &&
		s.LastActiveTime.Equal(o.LastActiveTime) &&
		s.IsPaused == o.IsPaused
}

// HasProgress reports whether the reader moved since the session started.
func (s ReadingSession) HasProgress() bool {
	return s.CurrChars != s.InitialChars
}

// CharsRead is the forward distance covered in this session.
func (s ReadingSession) CharsRead() int64 {
	if s.CurrChars < s.InitialChars {
		return 0
	}
	return s.CurrChars - s.InitialChars
}

// Recency orders divergent copies of the same session: the later of the last
// accounting update and the end stamp.
func (s ReadingSession) Recency() time.Time {
	if s.EndTime != nil && s.EndTime.After(s.LastActiveTime) {
		return *s.EndTime
	}
	return s.LastActiveTime
}

// Elapsed is the whole seconds between from and to. A clock that moved
// backwards yields 0; maxDelta > 0 caps a single interval.
func Elapsed(from, to time.Time, maxDelta time.Duration) int64 {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	if maxDelta > 0 && d > maxDelta {
		d = maxDelta
	}
	return int64(d / time.Second)
}

type State string

const (
	StateReading  State = "reading"
	StatePaused   State = "paused"
	StateFinished State = "finished"
)

func (s ReadingSession) State() State {
	switch {
	case !s.IsOpen():
		return StateFinished
	case s.IsPaused:
		return StatePaused
	default:
		return StateReading
	}
}
