package preview

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diag "github.com/coreman2200/beacon/internal/diagnostics"
	"github.com/coreman2200/beacon/internal/pixel"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestFramesReachClients(t *testing.T) {
	s := New(2, 30)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv, "/ws")
	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, float64(2), hello["count"])
	assert.Equal(t, float64(30), hello["fps"])

	require.NoError(t, s.Write([]pixel.Color{{R: 1}, {G: 1, B: 1}}))

	var f struct {
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, []byte{255, 0, 0, 0, 255, 255}, f.RGB)
}

func TestHealth(t *testing.T) {
	s := New(4, 60)
	require.NoError(t, s.Write(make([]pixel.Color, 4)))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var h map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, float64(1), h["frame_id"])
	assert.Equal(t, float64(4), h["count"])
}

func TestDiagReplayAndPush(t *testing.T) {
	s := New(1, 10)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	s.PushDiag(diag.Reload("show.beacon", nil))
	conn := dial(t, srv, "/diag")

	var d diag.Diagnostic
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, "SCRIPT.RELOADED", d.Code)

	s.PushDiag(diag.Reload("show.beacon", errors.New("bad")))
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, "SCRIPT.RELOAD_FAILED", d.Code)
	assert.Equal(t, diag.Err, d.Severity)
}

func TestIndexPage(t *testing.T) {
	srv := httptest.NewServer(New(1, 10).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFailedWriteDropsClient(t *testing.T) {
	s := New(1, 10)
	joined := make(chan struct{})
	// join without a reader so only a failed write can remove the client
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn := s.upgrade(w, r)
		if conn == nil {
			return
		}
		s.mu.Lock()
		s.clients[conn] = true
		s.mu.Unlock()
		close(joined)
	}))
	defer srv.Close()

	conn := dial(t, srv, "/")
	<-joined
	conn.Close()

	require.Eventually(t, func() bool {
		_ = s.Write([]pixel.Color{{R: 1}})
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthDuringBroadcast(t *testing.T) {
	s := New(1, 10)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv, "/ws")
	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))

	// hold the broadcast slot; health must still answer
	s.send.Lock()
	defer s.send.Unlock()
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var h map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, float64(1), h["clients"])
}
