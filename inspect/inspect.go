// Package inspect serves a live view of an aspen scene over HTTP.
//
// Attach snapshots the scene at the end of every frame; the HTTP handlers
// only ever read those snapshots, so the server can run on its own
// goroutine while the frame loop owns the scene.
//
//	in := inspect.Attach(scene)
//	go in.ListenAndServe(ctx, "localhost:6060")
//
// Endpoints:
//
//	/health  liveness and the last frame number
//	/tree    the entity hierarchy with bounds, as JSON
//	/frames  recent frame stats, oldest first
//	/ws      a websocket stream with one frame message per Update
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phanxgames/aspen"
)

const (
	historySize   = 120
	maxTreeDepth  = 500
	sendQueueSize = 16
	writeTimeout  = 2 * time.Second
)

// Node is one entity in a tree snapshot.
type Node struct {
	Entity     string      `json:"entity"`
	Index      uint32      `json:"index"`
	Generation uint32      `json:"generation"`
	Bounds     *aspen.Rect `json:"bounds,omitempty"`
	Children   []Node      `json:"children,omitempty"`
}

// Frame is the JSON form of aspen.FrameStats.
type Frame struct {
	Frame     uint64  `json:"frame"`
	Passes    int     `json:"passes"`
	Events    int     `json:"events"`
	Handlers  int     `json:"handlers"`
	Pending   int     `json:"pending"`
	Restyles  int     `json:"restyles"`
	Relayouts int     `json:"relayouts"`
	Redraws   int     `json:"redraws"`
	Entities  int     `json:"entities"`
	Animating bool    `json:"animating"`
	UpdateMs  float64 `json:"updateMs"`
	DrawMs    float64 `json:"drawMs"`
	Painted   int     `json:"painted"`
}

func frameOf(st aspen.FrameStats) Frame {
	return Frame{
		Frame:     st.Frame,
		Passes:    st.Passes,
		Events:    st.Events,
		Handlers:  st.Handlers,
		Pending:   st.Pending,
		Restyles:  st.Restyles,
		Relayouts: st.Relayouts,
		Redraws:   st.Redraws,
		Entities:  st.Entities,
		Animating: st.Animating,
		UpdateMs:  float64(st.UpdateTime) / float64(time.Millisecond),
		DrawMs:    float64(st.DrawTime) / float64(time.Millisecond),
		Painted:   st.Painted,
	}
}

// Inspector holds the snapshots published by the frame loop and the
// websocket subscribers waiting for new frames.
type Inspector struct {
	mu          sync.RWMutex
	tree        *Node
	treeVersion uint64
	frames      []Frame
	subs        map[chan []byte]struct{}

	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Attach creates an Inspector fed by s. It must be called from the
// goroutine that runs s.Update.
func Attach(s *aspen.Scene) *Inspector {
	in := &Inspector{
		subs:   make(map[chan []byte]struct{}),
		logger: slog.Default().With("component", "aspen/inspect"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	in.snapshot(s)
	s.OnFrame(func(st aspen.FrameStats) {
		in.snapshot(s)
		in.publish(frameOf(st))
	})
	return in
}

// SetLogger replaces the inspector's logger.
func (in *Inspector) SetLogger(l *slog.Logger) {
	if l != nil {
		in.logger = l
	}
}

// snapshot copies the hierarchy. Bounds change without bumping the tree
// version, so the copy is taken every frame.
func (in *Inspector) snapshot(s *aspen.Scene) {
	root := buildNode(s, s.Root(), 0)
	in.mu.Lock()
	in.tree = &root
	in.treeVersion = s.Tree().Version()
	in.mu.Unlock()
}

func buildNode(s *aspen.Scene, e aspen.Entity, depth int) Node {
	n := Node{Entity: e.String(), Index: e.Index, Generation: e.Generation}
	if r, ok := s.Bounds(e); ok {
		n.Bounds = &r
	}
	if depth >= maxTreeDepth {
		return n
	}
	for c := range s.Tree().Children(e) {
		n.Children = append(n.Children, buildNode(s, c, depth+1))
	}
	return n
}

func (in *Inspector) publish(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		in.logger.Error("encode frame", "err", err)
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.frames = append(in.frames, f)
	if len(in.frames) > historySize {
		in.frames = in.frames[len(in.frames)-historySize:]
	}
	for ch := range in.subs {
		select {
		case ch <- data:
		default:
			// Slow reader: drop the frame.
		}
	}
}

// Handler returns the inspector's HTTP routes.
func (in *Inspector) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", in.handleHealth)
	mux.HandleFunc("/tree", in.handleTree)
	mux.HandleFunc("/frames", in.handleFrames)
	mux.HandleFunc("/ws", in.handleStream)
	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (in *Inspector) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("inspect listen: %w", err)
	}
	return in.Serve(ctx, ln)
}

// Serve serves Handler on ln until ctx is done.
func (in *Inspector) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: in.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	in.logger.Info("inspector listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("inspect serve: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (in *Inspector) handleHealth(w http.ResponseWriter, r *http.Request) {
	in.mu.RLock()
	var frame uint64
	if n := len(in.frames); n > 0 {
		frame = in.frames[n-1].Frame
	}
	subs := len(in.subs)
	in.mu.RUnlock()
	writeJSON(w, map[string]any{"status": "ok", "frame": frame, "subscribers": subs})
}

func (in *Inspector) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	in.mu.RLock()
	tree, version := in.tree, in.treeVersion
	in.mu.RUnlock()
	if tree == nil {
		http.Error(w, "no tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, struct {
		Version uint64 `json:"version"`
		Root    *Node  `json:"root"`
	}{version, tree})
}

func (in *Inspector) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	in.mu.RLock()
	frames := append([]Frame(nil), in.frames...)
	in.mu.RUnlock()
	writeJSON(w, frames)
}

func (in *Inspector) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := in.upgrader.Upgrade(w, r, nil)
	if err != nil {
		in.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	ch := make(chan []byte, sendQueueSize)

	in.mu.Lock()
	if n := len(in.frames); n > 0 {
		if data, err := json.Marshal(in.frames[n-1]); err == nil {
			ch <- data
		}
	}
	in.subs[ch] = struct{}{}
	in.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Drain client messages so close frames are noticed.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		in.mu.Lock()
		delete(in.subs, ch)
		in.mu.Unlock()
		conn.Close()
	}()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case data := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				in.logger.Debug("websocket write failed", "err", err)
				return
			}
		}
	}
}
