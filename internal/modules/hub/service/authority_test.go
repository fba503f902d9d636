package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hubstore "lectern/internal/modules/hub/adapter/out"
	"lectern/internal/modules/hub/domain"
	"lectern/internal/modules/hub/service"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
)

var base = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newAuthority(t *testing.T) *service.Authority {
	t.Helper()
	store, err := hubstore.OpenGormStore(filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return service.NewAuthority(clock.Func(func() time.Time { return base }), store, nil)
}

func session(id string, chars int64, lastActive time.Time) domain.Session {
	return domain.Session{
		ID:               id,
		SourceID:         "book-1",
		InitialChars:     0,
		CurrChars:        chars,
		TotalReadingTime: chars,
		StartTime:        base.Add(-time.Hour),
		LastActiveTime:   lastActive,
	}
}

func TestApplySessionsKeepsStrictlyNewer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	authority := newAuthority(t)

	canonical, err := authority.ApplySessions(ctx, []domain.Session{session("s1", 100, base)})
	require.NoError(t, err)
	require.Len(t, canonical, 1)
	assert.Equal(t, int64(100), canonical[0].CurrChars)

	// Same recency: stored copy stays.
	canonical, err = authority.ApplySessions(ctx, []domain.Session{session("s1", 999, base)})
	require.NoError(t, err)
	assert.Equal(t, int64(100), canonical[0].CurrChars)

	// Older: rejected, canonical returned.
	canonical, err = authority.ApplySessions(ctx, []domain.Session{session("s1", 5, base.Add(-time.Minute))})
	require.NoError(t, err)
	assert.Equal(t, int64(100), canonical[0].CurrChars)

	// Newer: accepted.
	end := base.Add(2 * time.Minute)
	newer := session("s1", 300, base.Add(time.Minute))
	newer.EndTime = &end
	canonical, err = authority.ApplySessions(ctx, []domain.Session{newer, session("s2", 10, base)})
	require.NoError(t, err)
	require.Len(t, canonical, 2)
	assert.Equal(t, "s1", canonical[0].ID)
	assert.Equal(t, int64(300), canonical[0].CurrChars)
	require.NotNil(t, canonical[0].EndTime)
	assert.True(t, end.Equal(*canonical[0].EndTime))
	assert.Equal(t, "s2", canonical[1].ID)

	all, err := authority.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestApplySessionsRejectsMissingIDs(t *testing.T) {
	t.Parallel()
	authority := newAuthority(t)
	_, err := authority.ApplySessions(context.Background(), []domain.Session{{SourceID: "book-1"}})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestApplyProgressLastWriterWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	authority := newAuthority(t)

	first := domain.Progress{SourceID: "book-1", Title: "Dune", CurrChars: 500, TotalChars: 9000, UpdatedAt: base}
	_, err := authority.ApplyProgress(ctx, []domain.Progress{first})
	require.NoError(t, err)

	stale := first
	stale.CurrChars = 10
	stale.UpdatedAt = base.Add(-time.Hour)
	canonical, err := authority.ApplyProgress(ctx, []domain.Progress{stale})
	require.NoError(t, err)
	assert.Equal(t, int64(500), canonical[0].CurrChars)

	fresh := first
	fresh.CurrChars = 800
	fresh.UpdatedAt = base.Add(time.Hour)
	canonical, err = authority.ApplyProgress(ctx, []domain.Progress{fresh})
	require.NoError(t, err)
	assert.Equal(t, int64(800), canonical[0].CurrChars)

	all, err := authority.ListProgress(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Dune", all[0].Title)
	assert.True(t, fresh.UpdatedAt.Equal(all[0].UpdatedAt))
}

func TestRecordPresenceKeepsLatestPerUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	authority := newAuthority(t)

	_, err := authority.CurrentPresence(ctx, "ana")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, authority.RecordPresence(ctx, domain.Presence{User: "ana", ActivityType: "reading", ActivityName: "Dune", SentAt: base}))
	require.NoError(t, authority.RecordPresence(ctx, domain.Presence{User: "ana", ActivityType: "idle", SentAt: base.Add(-time.Minute)}))

	got, err := authority.CurrentPresence(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "reading", got.ActivityType)
	assert.Equal(t, "Dune", got.ActivityName)
	assert.True(t, base.Equal(got.ReceivedAt))

	require.NoError(t, authority.RecordPresence(ctx, domain.Presence{User: "ana", ActivityType: "idle", SentAt: base}))
	got, err = authority.CurrentPresence(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "idle", got.ActivityType)
}

func TestHealthPingsStore(t *testing.T) {
	t.Parallel()
	require.NoError(t, newAuthority(t).Health(context.Background()))
}
