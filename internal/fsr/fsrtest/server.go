// Package fsrtest provides an in-process pad server for tests: /defaults
// plus a /ws endpoint that records client frames and can push messages or
// drop connections on demand.
package fsrtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/five82/fsrmon/internal/fsr"
)

// Frame is one message received from a client.
type Frame struct {
	Action string
	Args   []json.RawMessage
}

// Server is a fake pad server backed by httptest.
type Server struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu           sync.Mutex
	defaults     fsr.Defaults
	failDefaults int
	defaultsHits int
	conns        map[*websocket.Conn]struct{}

	frames    chan Frame
	connected chan struct{}
}

// NewServer starts a server that answers /defaults with defaults.
func NewServer(t testing.TB, defaults fsr.Defaults) *Server {
	t.Helper()
	s := &Server{
		defaults:  defaults,
		conns:     make(map[*websocket.Conn]struct{}),
		frames:    make(chan Frame, 256),
		connected: make(chan struct{}, 16),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/defaults", s.handleDefaults)
	mux.HandleFunc("/ws", s.handleWS)
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// URL returns the http base URL.
func (s *Server) URL() string { return s.srv.URL }

// Host returns host:port without a scheme.
func (s *Server) Host() string { return strings.TrimPrefix(s.srv.URL, "http://") }

// WebsocketURL returns the ws:// endpoint.
func (s *Server) WebsocketURL() string { return "ws://" + s.Host() + "/ws" }

// SetDefaults replaces the /defaults payload.
func (s *Server) SetDefaults(d fsr.Defaults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = d
}

// FailDefaults makes the next n /defaults requests return 503.
func (s *Server) FailDefaults(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDefaults = n
}

// DefaultsHits counts /defaults requests, failed ones included.
func (s *Server) DefaultsHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultsHits
}

// Clients returns the number of open websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// WaitConnected blocks until a websocket client connects.
func (s *Server) WaitConnected(t testing.TB, timeout time.Duration) {
	t.Helper()
	select {
	case <-s.connected:
	case <-time.After(timeout):
		t.Fatalf("no websocket client connected within %v", timeout)
	}
}

// NextFrame returns the next frame a client sent.
func (s *Server) NextFrame(t testing.TB, timeout time.Duration) Frame {
	t.Helper()
	select {
	case f := <-s.frames:
		return f
	case <-time.After(timeout):
		t.Fatalf("no frame received within %v", timeout)
		return Frame{}
	}
}

// Send pushes [action, payload] to every connected client.
func (s *Server) Send(t testing.TB, action string, payload any) {
	t.Helper()
	data, err := json.Marshal([]any{action, payload})
	if err != nil {
		t.Fatalf("marshal %s: %v", action, err)
	}
	s.SendRaw(t, data)
}

// SendRaw pushes an arbitrary text frame to every connected client.
func (s *Server) SendRaw(t testing.TB, data []byte) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			t.Errorf("write to client: %v", err)
		}
	}
}

// DropClients closes every client connection without a close handshake,
// the way a restarting device drops its sockets.
func (s *Server) DropClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}

// Close stops the server and drops clients.
func (s *Server) Close() {
	s.DropClients()
	s.srv.Close()
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.defaultsHits++
	fail := s.failDefaults > 0
	if fail {
		s.failDefaults--
	}
	defaults := s.defaults
	s.mu.Unlock()

	if fail {
		http.Error(w, "starting up", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(defaults)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	select {
	case s.connected <- struct{}{}:
	default:
	}

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil || len(parts) == 0 {
			continue
		}
		var action string
		if err := json.Unmarshal(parts[0], &action); err != nil {
			continue
		}
		select {
		case s.frames <- Frame{Action: action, Args: parts[1:]}:
		default:
		}
	}
}
