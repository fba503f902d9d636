package in_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hubhttp "lectern/internal/modules/hub/adapter/in"
	hubstore "lectern/internal/modules/hub/adapter/out"
	"lectern/internal/modules/hub/service"
	"lectern/internal/modules/hub/usecase"
	"lectern/internal/platform/clock"
	"lectern/internal/platform/wire"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const token = "secret"

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store, err := hubstore.OpenGormStore(filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	now := clock.Func(func() time.Time { return time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC) })
	authority := service.NewAuthority(now, store, nil)
	handler := hubhttp.NewHTTPHandler(usecase.NewInteractor(authority), hubhttp.Options{Token: token, User: "ana"})
	return handler.Router()
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealthIsPublic(t *testing.T) {
	t.Parallel()
	router := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	t.Parallel()
	router := newRouter(t)
	for _, header := range []string{"", "Bearer wrong", token} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "header %q", header)
	}

	rr := do(t, router, http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me wire.Me
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "ana", me.User)
}

func TestSessionBatchReturnsCanonicalCopies(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	first := wire.Session{ID: "s1", SourceID: "book-1", CurrChars: 100, StartTime: 1000, LastActiveTime: 2000}
	rr := do(t, router, http.MethodPost, "/api/v1/sessions/batch", wire.SessionBatch{Sessions: []wire.Session{first}})
	require.Equal(t, http.StatusOK, rr.Code)

	older := first
	older.CurrChars = 1
	older.LastActiveTime = 1500
	rr = do(t, router, http.MethodPost, "/api/v1/sessions/batch", wire.SessionBatch{Sessions: []wire.Session{older}})
	require.Equal(t, http.StatusOK, rr.Code)
	var out wire.SessionBatch
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Sessions, 1)
	assert.Equal(t, first, out.Sessions[0])

	rr = do(t, router, http.MethodGet, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	out = wire.SessionBatch{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, []wire.Session{first}, out.Sessions)
}

func TestSessionBatchValidation(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	rr := do(t, router, http.MethodPost, "/api/v1/sessions/batch", wire.SessionBatch{Sessions: []wire.Session{{ID: "s1"}}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/batch", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestProgressBatchRoundTrip(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	progress := wire.Progress{SourceID: "book-1", Title: "Dune", CurrChars: 400, TotalChars: 9000, UpdatedAt: 3000}
	rr := do(t, router, http.MethodPost, "/api/v1/progress/batch", wire.ProgressBatch{Progress: []wire.Progress{progress}})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/v1/progress", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var out wire.ProgressBatch
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, []wire.Progress{progress}, out.Progress)
}

func TestPresenceOverWebsocket(t *testing.T) {
	t.Parallel()
	router := newRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	rr := do(t, router, http.MethodGet, "/api/v1/presence/current", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/presence"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	frame := wire.Presence{Type: wire.FramePresence, ActivityType: "reading", ActivityName: "Dune", SentAt: 5000}
	require.NoError(t, conn.WriteJSON(frame))

	require.Eventually(t, func() bool {
		rr := do(t, router, http.MethodGet, "/api/v1/presence/current", nil)
		if rr.Code != http.StatusOK {
			return false
		}
		var got wire.Presence
		return json.Unmarshal(rr.Body.Bytes(), &got) == nil && got == frame
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPresenceRejectsMissingToken(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(newRouter(t))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/presence"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
