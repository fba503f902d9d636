package domain

import "time"

// Accounting carries the parameters every time-crediting transition needs.
type Accounting struct {
	Now      time.Time
	MaxDelta time.Duration
}

// Pause flushes the running interval and stops the clock. The bool is false
// when the session was already paused or finished and nothing changed.
func (s ReadingSession) Pause(acc Accounting) (ReadingSession, bool) {
	if !s.IsOpen() || s.IsPaused {
		return s, false
	}
	s.TotalReadingTime += Elapsed(s.LastActiveTime, acc.Now, acc.MaxDelta)
	s.LastActiveTime = acc.Now
	s.IsPaused = true
	return s, true
}

// Resume restarts the clock from now without crediting the paused interval.
// Resuming a running session would drop its open interval, so it is a no-op.
func (s ReadingSession) Resume(now time.Time) (ReadingSession, bool) {
	if !s.IsOpen() || !s.IsPaused {
		return s, false
	}
	s.LastActiveTime = now
	s.IsPaused = false
	return s, true
}

// Progress credits the running interval and moves the position. Paused
// sessions keep both position and time untouched.
func (s ReadingSession) Progress(chars int64, acc Accounting) (ReadingSession, bool) {
	if !s.IsOpen() || s.IsPaused {
		return s, false
	}
	s.TotalReadingTime += Elapsed(s.LastActiveTime, acc.Now, acc.MaxDelta)
	s.CurrChars = chars
	s.LastActiveTime = acc.Now
	return s, true
}

// Finish pauses a running session to flush its final interval and stamps the
// end time. Callers discard sessions without progress instead.
func (s ReadingSession) Finish(acc Accounting) (ReadingSession, bool) {
	if !s.IsOpen() {
		return s, false
	}
	s, _ = s.Pause(acc)
	end := acc.Now
	s.EndTime = &end
	return s, true
}

// CloseOrphan ends a session left open by a process that exited without
// finishing it. No time is credited past the last accounting update.
func (s ReadingSession) CloseOrphan() ReadingSession {
	if !s.IsOpen() {
		return s
	}
	s.IsPaused = true
	end := s.LastActiveTime
	s.EndTime = &end
	return s
}
