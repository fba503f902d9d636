package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func at(seconds int) Accounting {
	return Accounting{Now: t0.Add(time.Duration(seconds) * time.Second)}
}

func TestRunningIntervalsSumAcrossPause(t *testing.T) {
	t.Parallel()
	s, err := NewSession("s-1", "dune", 500, t0)
	require.NoError(t, err)

	s, ok := s.Progress(900, at(60))
	require.True(t, ok)
	assert.Equal(t, int64(60), s.TotalReadingTime)

	s, ok = s.Pause(at(60))
	require.True(t, ok)
	s, ok = s.Resume(at(90).Now)
	require.True(t, ok)

	s, ok = s.Finish(at(130))
	require.True(t, ok)
	assert.Equal(t, int64(100), s.TotalReadingTime)
	assert.Equal(t, int64(900), s.CurrChars)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, t0.Add(130*time.Second), *s.EndTime)
	assert.Equal(t, StateFinished, s.State())
}

func TestPauseCreditsRunningInterval(t *testing.T) {
	t.Parallel()
	s, err := NewSession("s-1", "dune", 0, t0)
	require.NoError(t, err)

	s, ok := s.Pause(at(45))
	require.True(t, ok)
	assert.Equal(t, int64(45), s.TotalReadingTime)
	assert.True(t, s.IsPaused)

	_, ok = s.Pause(at(80))
	assert.False(t, ok)
	_, ok = s.Progress(10, at(80))
	assert.False(t, ok)
}

func TestResumeWhileRunningKeepsOpenInterval(t *testing.T) {
	t.Parallel()
	s, err := NewSession("s-1", "dune", 0, t0)
	require.NoError(t, err)
	same, ok := s.Resume(at(30).Now)
	assert.False(t, ok)
	assert.Equal(t, t0, same.LastActiveTime)
}

func TestElapsedClampsSkewAndCapsDelta(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(0), Elapsed(t0, t0.Add(-time.Hour), 0))
	assert.Equal(t, int64(3600), Elapsed(t0, t0.Add(time.Hour), 0))
	assert.Equal(t, int64(600), Elapsed(t0, t0.Add(time.Hour), 10*time.Minute))

	s, err := NewSession("s-1", "dune", 0, t0)
	require.NoError(t, err)
	s, _ = s.Progress(10, Accounting{Now: t0.Add(-5 * time.Minute)})
	assert.Equal(t, int64(0), s.TotalReadingTime)
}

func TestCloseOrphanCreditsNothingPastLastUpdate(t *testing.T) {
	t.Parallel()
	s, err := NewSession("s-1", "dune", 0, t0)
	require.NoError(t, err)
	s, _ = s.Progress(100, at(40))

	closed := s.CloseOrphan()
	assert.Equal(t, int64(40), closed.TotalReadingTime)
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, s.LastActiveTime, *closed.EndTime)
	assert.True(t, closed.Recency().Equal(s.LastActiveTime))
}

func TestNewSessionValidates(t *testing.T) {
	t.Parallel()
	_, err := NewSession("", "dune", 0, t0)
	require.Error(t, err)
	_, err = NewSession("s-1", " ", 0, t0)
	require.Error(t, err)
	_, err = NewSession("s-1", "dune", -1, t0)
	require.Error(t, err)
}
