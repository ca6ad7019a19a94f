package inspect

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phanxgames/aspen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScene(t *testing.T) (*aspen.Scene, aspen.Entity, aspen.Entity) {
	t.Helper()
	s := aspen.NewScene()
	a := s.CreateEntity(aspen.Null)
	b := s.CreateEntity(a)
	s.SetBounds(b, aspen.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	return s, a, b
}

func getJSON(t *testing.T, srv *httptest.Server, path string, v any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestTree(t *testing.T) {
	s, a, b := newScene(t)
	in := Attach(s)
	srv := httptest.NewServer(in.Handler())
	defer srv.Close()

	var got struct {
		Version uint64 `json:"version"`
		Root    Node   `json:"root"`
	}
	getJSON(t, srv, "/tree", &got)
	assert.Equal(t, s.Root().Index, got.Root.Index)
	require.Len(t, got.Root.Children, 1)
	assert.Equal(t, a.Index, got.Root.Children[0].Index)
	assert.Nil(t, got.Root.Children[0].Bounds)
	require.Len(t, got.Root.Children[0].Children, 1)
	child := got.Root.Children[0].Children[0]
	assert.Equal(t, b.String(), child.Entity)
	require.NotNil(t, child.Bounds)
	assert.Equal(t, 3.0, child.Bounds.Width)

	// New entities appear after the next frame.
	s.CreateEntity(aspen.Null)
	s.Update()
	getJSON(t, srv, "/tree", &got)
	assert.Len(t, got.Root.Children, 2)
	assert.Equal(t, s.Tree().Version(), got.Version)
}

func TestFramesAndHealth(t *testing.T) {
	s, _, _ := newScene(t)
	in := Attach(s)
	srv := httptest.NewServer(in.Handler())
	defer srv.Close()

	var frames []Frame
	getJSON(t, srv, "/frames", &frames)
	assert.Empty(t, frames)

	for range historySize + 5 {
		s.Update()
	}
	getJSON(t, srv, "/frames", &frames)
	require.Len(t, frames, historySize)
	assert.Equal(t, uint64(5), frames[0].Frame)
	assert.Equal(t, 3, frames[len(frames)-1].Entities)

	var health map[string]any
	getJSON(t, srv, "/health", &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(historySize+4), health["frame"])
}

func TestMethodNotAllowed(t *testing.T) {
	s, _, _ := newScene(t)
	srv := httptest.NewServer(Attach(s).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tree", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStream(t *testing.T) {
	s, _, _ := newScene(t)
	in := Attach(s)
	srv := httptest.NewServer(in.Handler())
	defer srv.Close()
	s.Update()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The latest frame is sent on connect.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, uint64(0), f.Frame)

	// Wait until the subscriber is registered, then stream a new frame.
	require.Eventually(t, func() bool {
		in.mu.RLock()
		defer in.mu.RUnlock()
		return len(in.subs) == 1
	}, 5*time.Second, 10*time.Millisecond)
	s.Update()
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, uint64(1), f.Frame)
	assert.Equal(t, 3, f.Entities)

	conn.Close()
	assert.Eventually(t, func() bool {
		in.mu.RLock()
		defer in.mu.RUnlock()
		return len(in.subs) == 0
	}, 5*time.Second, 10*time.Millisecond, "closed subscribers are dropped")
}

func TestServeStopsOnCancel(t *testing.T) {
	s, _, _ := newScene(t)
	in := Attach(s)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- in.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
