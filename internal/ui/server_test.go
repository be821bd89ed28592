package ui

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/bettersql/internal/testutil"
	"github.com/leapstack-labs/bettersql/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Handler(t *testing.T) {
	s := NewServer(Config{Logger: testutil.NewTestLogger(t)})
	h, err := s.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bsql playground")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/playground.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORS(t *testing.T) {
	s := NewServer(Config{CORS: true, Logger: testutil.NewTestLogger(t)})
	h, err := s.Handler()
	require.NoError(t, err)

	preflight := httptest.NewRequest(http.MethodOptions, "/api/compile", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/api/compile", strings.NewReader(`{"query": "select user [ id ]"}`))
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Request-Id", rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestServer_NoCORSByDefault(t *testing.T) {
	s := NewServer(Config{Logger: testutil.NewTestLogger(t)})
	h, err := s.Handler()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/compile", strings.NewReader(`{"query": "select user [ id ]"}`))
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_WatcherBroadcasts(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "user.bsql")
	require.NoError(t, os.WriteFile(src, []byte("select user [ id ]"), 0o600))

	var forwarded []watch.Event
	s := NewServer(Config{
		Logger: testutil.NewTestLogger(t),
		Watch: &watch.Config{
			Dir:       dir,
			OnCompile: func(ev watch.Event) { forwarded = append(forwarded, ev) },
		},
	})
	require.NotNil(t, s.Watcher())

	updates := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(updates)

	s.Watcher().CompileFile(src)

	select {
	case ev := <-updates:
		assert.Equal(t, src, ev.Source)
		assert.True(t, ev.OK)
	case <-time.After(time.Second):
		t.Fatal("compile was not broadcast")
	}
	require.Len(t, forwarded, 1, "the caller's callback still runs")
}

func TestServer_ServeShutsDown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s := NewServer(Config{Port: port, Logger: testutil.NewTestLogger(t)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
