// Package preview streams rendered frames to browsers over websockets.
//
// Routes:
//
//	/        a small page that draws the strip
//	/ws      frames as JSON {t, frame_id, rgb}, rgb base64 encoded
//	/diag    diagnostics as JSON
//	/health  frame counter and uptime
package preview

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/beacon/internal/diagnostics"
	"github.com/coreman2200/beacon/internal/pixel"
)

//go:embed index.html
var indexHTML []byte

const writeWait = 200 * time.Millisecond

type Server struct {
	// send serializes broadcasts; gorilla allows one writer per conn.
	send        sync.Mutex
	mu          sync.RWMutex
	size        int
	fps         int
	rgb         []byte
	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	recent      []diag.Diagnostic
	closed      bool
}

func New(size, fps int) *Server {
	return &Server{
		size:        size,
		fps:         fps,
		rgb:         make([]byte, size*3),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})
	return mux
}

// Write implements the render driver; it never fails on a slow client.
// Clients whose write fails are dropped.
func (s *Server) Write(buf []pixel.Color) error {
	s.mu.Lock()
	if len(s.rgb) != len(buf)*3 {
		s.rgb = make([]byte, len(buf)*3)
		s.size = len(buf)
	}
	pixel.PutRGB(s.rgb, buf)
	s.frameID++

	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: s.frameID, RGB: s.rgb})
	s.mu.Unlock()
	s.broadcast(s.clients, b)
	return nil
}

// PushDiag sends d to every diagnostics client. The last few are kept and
// replayed to clients that connect later.
func (s *Server) PushDiag(d diag.Diagnostic) {
	s.mu.Lock()
	s.recent = append(s.recent, d)
	if len(s.recent) > 16 {
		s.recent = s.recent[len(s.recent)-16:]
	}
	b, _ := json.Marshal(d)
	s.mu.Unlock()
	s.broadcast(s.diagClients, b)
}

// broadcast writes b to a snapshot of set without holding mu, so a slow
// client never stalls health checks or new connections.
func (s *Server) broadcast(set map[*websocket.Conn]bool, b []byte) {
	s.send.Lock()
	defer s.send.Unlock()

	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("dropping preview client")
			s.mu.Lock()
			delete(set, c)
			s.mu.Unlock()
			c.Close()
		}
	}
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn := s.upgrade(w, r)
	if conn == nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	hello, _ := json.Marshal(map[string]any{"count": s.size, "fps": s.fps})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, hello)
	s.mu.Unlock()
	go s.drain(conn, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn := s.upgrade(w, r)
	if conn == nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	for _, d := range s.recent {
		b, _ := json.Marshal(d)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}
	s.mu.Unlock()
	go s.drain(conn, s.diagClients)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"count":    s.size,
		"fps":      s.fps,
		"clients":  len(s.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) *websocket.Conn {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		conn.Close()
		return nil
	}
	return conn
}

// drain reads until the peer goes away, then forgets the connection.
func (s *Server) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close drops every client connection.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.clients {
		c.Close()
	}
	for c := range s.diagClients {
		c.Close()
	}
	return nil
}
