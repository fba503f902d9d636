package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectern/internal/modules/sync/domain"
	syncout "lectern/internal/modules/sync/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
)

var now = clock.Func(func() time.Time { return time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC) })

type fakeRemote struct {
	mu        sync.Mutex
	sessions  []domain.SessionRecord
	calls     int
	pushErr   error
	fetchGate chan struct{}
}

func (f *fakeRemote) FetchSessions(ctx context.Context) ([]domain.SessionRecord, error) {
	f.mu.Lock()
	f.calls++
	gate := f.fetchGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.sessions, nil
}

func (f *fakeRemote) PushSessions(_ context.Context, records []domain.SessionRecord) ([]domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	return records, nil
}

func (f *fakeRemote) FetchProgress(context.Context) ([]domain.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, nil
}

func (f *fakeRemote) PushProgress(_ context.Context, records []domain.ProgressRecord) ([]domain.ProgressRecord, error) {
	return records, nil
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLocal struct {
	sessions []domain.LocalSession
	applied  []domain.Changes
}

func (f *fakeLocal) Sessions(context.Context) ([]domain.LocalSession, error)  { return f.sessions, nil }
func (f *fakeLocal) Progress(context.Context) ([]domain.LocalProgress, error) { return nil, nil }
func (f *fakeLocal) Pending(context.Context) (int, error)                     { return len(f.sessions), nil }
func (f *fakeLocal) Apply(_ context.Context, c domain.Changes) (domain.Applied, error) {
	f.applied = append(f.applied, c)
	return domain.Applied{Sessions: len(c.SessionPulls), Cleaned: len(c.SessionClean)}, nil
}

type fixedActive string

func (a fixedActive) ActiveID(context.Context) (string, error) { return string(a), nil }

type gateFunc func() error

func (g gateFunc) Check() error { return g() }

type memoryActivity struct {
	mu     sync.Mutex
	events []domain.Activity
}

func (m *memoryActivity) Append(_ context.Context, a domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, a)
	return nil
}

func (m *memoryActivity) Tail(context.Context, syncout.ActivityQuery) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Activity(nil), m.events...), nil
}

var open = gateFunc(func() error { return nil })

func record(id string) domain.SessionRecord {
	t := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	return domain.SessionRecord{ID: id, SourceID: "dune", StartTime: t, LastActiveTime: t, CurrChars: 10}
}

func TestSyncPushesPullsAndReportsSuccess(t *testing.T) {
	t.Parallel()
	remote := &fakeRemote{sessions: []domain.SessionRecord{record("remote")}}
	local := &fakeLocal{sessions: []domain.LocalSession{{Record: record("local"), Dirty: true}, {Record: record("active"), Dirty: true}}}
	activity := &memoryActivity{}
	r := NewReconciler(now, remote, local, fixedActive("active"), open, activity, nil, nil)

	result, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushedSessions)
	assert.Equal(t, 1, result.PulledSessions)
	assert.Equal(t, 1, result.Excluded)

	require.Len(t, local.applied, 1)
	assert.Len(t, local.applied[0].SessionClean, 1)
	assert.Equal(t, "local", local.applied[0].SessionClean[0].ID)

	status := r.Status()
	assert.False(t, status.IsSyncing)
	assert.Empty(t, status.Error)
	assert.False(t, status.LastSyncAt.IsZero())
	require.Len(t, activity.events, 1)
	assert.Equal(t, domain.ActivitySyncApplied, activity.events[0].Type)
}

func TestNetworkFailureWritesNothingLocally(t *testing.T) {
	t.Parallel()
	remote := &fakeRemote{pushErr: fmt.Errorf("%w: connection refused", apperrors.ErrOffline)}
	local := &fakeLocal{sessions: []domain.LocalSession{{Record: record("local"), Dirty: true}}}
	r := NewReconciler(now, remote, local, fixedActive(""), open, &memoryActivity{}, nil, nil)

	_, err := r.Sync(context.Background())
	require.ErrorIs(t, err, apperrors.ErrOffline)
	assert.Empty(t, local.applied)

	status := r.Status()
	assert.False(t, status.IsSyncing)
	assert.Contains(t, status.Error, "connection refused")

	remote.mu.Lock()
	remote.pushErr = nil
	remote.mu.Unlock()
	_, err = r.Sync(context.Background())
	require.NoError(t, err)
	assert.Len(t, local.applied, 1)
	assert.Empty(t, r.Status().Error)
}

func TestGateClosedMakesNoNetworkCalls(t *testing.T) {
	t.Parallel()
	remote := &fakeRemote{}
	activity := &memoryActivity{}
	closed := gateFunc(func() error { return fmt.Errorf("sync unavailable: %w", apperrors.ErrOffline) })
	r := NewReconciler(now, remote, &fakeLocal{}, fixedActive(""), closed, activity, nil, nil)

	_, err := r.Sync(context.Background())
	require.ErrorIs(t, err, apperrors.ErrOffline)
	assert.Equal(t, 0, remote.callCount())
	assert.NotEmpty(t, r.Status().Error)
	require.Len(t, activity.events, 1)
	assert.Equal(t, domain.ActivitySyncSkipped, activity.events[0].Type)
}

func TestConcurrentSyncIsRejected(t *testing.T) {
	t.Parallel()
	remote := &fakeRemote{fetchGate: make(chan struct{})}
	r := NewReconciler(now, remote, &fakeLocal{}, fixedActive(""), open, &memoryActivity{}, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Sync(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return r.Status().IsSyncing }, time.Second, time.Millisecond)

	_, err := r.Sync(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrSyncInProgress))

	close(remote.fetchGate)
	require.NoError(t, <-done)
	assert.False(t, r.Status().IsSyncing)
}
