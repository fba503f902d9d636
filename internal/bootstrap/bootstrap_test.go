package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectern/internal/platform/config"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/wire"
)

const hubToken = "test-token"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func startHub(t *testing.T) *httptest.Server {
	t.Helper()
	hub, err := NewHubServer(config.Config{Hub: config.Hub{
		DBPath: filepath.Join(t.TempDir(), "hub.db"),
		Token:  hubToken,
		User:   "ana",
	}}, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(hub.Handler)
	t.Cleanup(func() {
		srv.Close()
		_ = hub.Close()
	})
	return srv
}

func newClient(t *testing.T, hubURL string, clk *testClock) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		DataDir: dir,
		DBPath:  filepath.Join(dir, "lectern.db"),
		Remote:  config.Remote{BaseURL: hubURL, Token: hubToken, Timeout: 5 * time.Second},
		Presence: config.Presence{
			Timeout: 2 * time.Second,
		},
	}
	if hubURL != "" {
		cfg.Presence.URL = "ws" + strings.TrimPrefix(hubURL, "http") + "/api/v1/presence"
	}
	app, err := New(context.Background(), cfg, nil, WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func syncNow(t *testing.T, app *App) (pushed, pulled int) {
	t.Helper()
	ctx := context.Background()
	status, err := app.ConnectivityCLI.Probe(ctx)
	require.NoError(t, err)
	require.Equal(t, "authenticated", status.State)
	out, err := app.SyncCLI.SyncNow(ctx)
	require.NoError(t, err)
	return out.PushedSessions + out.PushedProgress, out.PulledSessions + out.PulledProgress
}

func TestTwoClientsRoundTripThroughHub(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startHub(t)
	clockA := &testClock{now: t0}
	clockB := &testClock{now: t0}
	a := newClient(t, srv.URL, clockA)
	b := newClient(t, srv.URL, clockB)

	_, err := a.BookCLI.AddBook(ctx, "dune", "Dune", 0, 1000)
	require.NoError(t, err)
	started, err := a.SessionCLI.Start(ctx, "dune")
	require.NoError(t, err)
	require.True(t, started.Applied)
	clockA.Set(t0.Add(60 * time.Second))
	_, err = a.SessionCLI.Progress(ctx, 300)
	require.NoError(t, err)
	clockA.Set(t0.Add(100 * time.Second))
	finished, err := a.SessionCLI.Finish(ctx)
	require.NoError(t, err)
	require.True(t, finished.Applied)
	assert.Equal(t, int64(100), finished.Session.TotalReadingTime)

	pushed, pulled := syncNow(t, a)
	assert.Equal(t, 2, pushed)
	assert.Zero(t, pulled)

	clockB.Set(t0.Add(200 * time.Second))
	pushed, pulled = syncNow(t, b)
	assert.Zero(t, pushed)
	assert.Equal(t, 2, pulled)

	sessions, err := b.SessionCLI.List(ctx, "", false, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	got := sessions[0]
	assert.Equal(t, started.Session.ID, got.ID)
	assert.Equal(t, int64(100), got.TotalReadingTime)
	assert.Equal(t, int64(300), got.CurrChars)
	require.NotNil(t, got.EndTime)
	assert.True(t, t0.Add(100*time.Second).Equal(*got.EndTime))

	book, err := b.BookCLI.GetBook(ctx, "dune")
	require.NoError(t, err)
	assert.Equal(t, int64(300), book.CurrChars)
	assert.Equal(t, "Dune", book.Title)

	pushed, pulled = syncNow(t, b)
	assert.Zero(t, pushed)
	assert.Zero(t, pulled)
	status, err := b.SyncCLI.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Pending)
	assert.Empty(t, status.Error)
}

func TestConflictingProgressKeepsWholeNewerRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startHub(t)
	clockA := &testClock{now: t0}
	clockB := &testClock{now: t0}
	a := newClient(t, srv.URL, clockA)
	b := newClient(t, srv.URL, clockB)

	_, err := a.BookCLI.AddBook(ctx, "dune", "Dune", 100, 1000)
	require.NoError(t, err)
	syncNow(t, a)
	syncNow(t, b)

	clockA.Set(t0.Add(5 * time.Minute))
	_, err = a.BookCLI.UpdatePosition(ctx, "dune", 500)
	require.NoError(t, err)
	clockB.Set(t0.Add(6 * time.Minute))
	_, err = b.BookCLI.AddBook(ctx, "dune", "Dune (2nd ed.)", 350, 1200)
	require.NoError(t, err)

	pushed, _ := syncNow(t, a)
	assert.Equal(t, 1, pushed)
	pushed, _ = syncNow(t, b)
	assert.Equal(t, 1, pushed)
	_, pulled := syncNow(t, a)
	assert.Equal(t, 1, pulled)

	book, err := a.BookCLI.GetBook(ctx, "dune")
	require.NoError(t, err)
	assert.Equal(t, "Dune (2nd ed.)", book.Title)
	assert.Equal(t, int64(350), book.CurrChars)
	assert.Equal(t, int64(1200), book.TotalChars)
	assert.True(t, t0.Add(6*time.Minute).Equal(book.UpdatedAt))
}

func TestActiveSessionStaysLocalUntilFinished(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startHub(t)
	clk := &testClock{now: t0}
	a := newClient(t, srv.URL, clk)

	_, err := a.SessionCLI.Start(ctx, "emma")
	require.NoError(t, err)
	clk.Set(t0.Add(time.Minute))
	_, err = a.SessionCLI.Progress(ctx, 40)
	require.NoError(t, err)

	out, err := a.SyncCLI.SyncNow(ctx)
	require.ErrorIs(t, err, apperrors.ErrOffline)
	assert.Zero(t, out.PushedSessions)

	status, err := a.ConnectivityCLI.Probe(ctx)
	require.NoError(t, err)
	require.Equal(t, "authenticated", status.State)
	out, err = a.SyncCLI.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Excluded)
	assert.Zero(t, out.PushedSessions)
}

func TestPresenceReachesHub(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startHub(t)
	a := newClient(t, srv.URL, &testClock{now: t0})

	// Offline until probed: nothing is sent.
	a.PresenceCLI.Set("reading", "ignored")
	require.NoError(t, a.PresenceCLI.Drain(ctx))

	_, err := a.ConnectivityCLI.Probe(ctx)
	require.NoError(t, err)
	a.PresenceCLI.Set("reading", "Dune")
	require.NoError(t, a.PresenceCLI.Drain(ctx))

	require.Eventually(t, func() bool {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/presence/current", nil)
		if err != nil {
			return false
		}
		req.Header.Set("Authorization", "Bearer "+hubToken)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var got wire.Presence
		if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&got) != nil {
			return false
		}
		return got.ActivityType == "reading" && got.ActivityName == "Dune"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRestoreResumesActiveSessionAcrossProcesses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Config{DataDir: dir, DBPath: filepath.Join(dir, "lectern.db")}
	clk := &testClock{now: t0}

	first, err := New(ctx, cfg, nil, WithClock(clk))
	require.NoError(t, err)
	started, err := first.SessionCLI.Start(ctx, "dune")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, nil, WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	current, err := second.SessionCLI.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, started.Session.ID, current.ID)

	snap, err := second.StatsCLI.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Active)
	assert.Equal(t, "reading", snap.Active.State)
	assert.Equal(t, "unauthenticated", snap.Connectivity)
}

func TestRuntimesSharingOneDatabaseSeeEachOthersTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Config{DataDir: dir, DBPath: filepath.Join(dir, "lectern.db")}
	clk := &testClock{now: t0}

	dashboard, err := New(ctx, cfg, nil, WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dashboard.Close() })
	started, err := dashboard.SessionCLI.Start(ctx, "dune")
	require.NoError(t, err)
	require.True(t, started.Applied)

	cli, err := New(ctx, cfg, nil, WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	again, err := cli.SessionCLI.Start(ctx, "emma")
	require.NoError(t, err)
	assert.False(t, again.Applied)
	assert.Equal(t, started.Session.ID, again.Session.ID)

	clk.Set(t0.Add(60 * time.Second))
	progressed, err := cli.SessionCLI.Progress(ctx, 500)
	require.NoError(t, err)
	require.True(t, progressed.Applied)

	clk.Set(t0.Add(90 * time.Second))
	finished, err := dashboard.SessionCLI.Finish(ctx)
	require.NoError(t, err)
	require.True(t, finished.Applied)
	assert.False(t, finished.Discarded)
	assert.Equal(t, int64(500), finished.Session.CurrChars)
	assert.Equal(t, int64(90), finished.Session.TotalReadingTime)

	stored, err := cli.SessionCLI.List(ctx, "", false, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].EndTime)
	assert.Equal(t, int64(500), stored[0].CurrChars)

	paused, err := cli.SessionCLI.Pause(ctx)
	require.NoError(t, err)
	assert.False(t, paused.Applied)
	assert.Nil(t, paused.Session)
	_, err = cli.SessionCLI.Current(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveSession)
}
