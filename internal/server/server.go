package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	timeouts Timeouts

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// Timeouts tunes the underlying http.Server. Zero WriteTimeout means no limit,
// which /api/ros2 needs for long-running commands.
type Timeouts struct {
	ReadHeader time.Duration
	Write      time.Duration
	Idle       time.Duration
}

const (
	maxHeaderBytes           = 1 << 20 // 1 MB
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultPort              = "8000"
)

// New returns a Server using t. Zero ReadHeader and Idle fall back to defaults.
func New(t Timeouts) *Server {
	if t.ReadHeader <= 0 {
		t.ReadHeader = defaultReadHeaderTimeout
	}
	if t.Idle <= 0 {
		t.Idle = defaultIdleTimeout
	}
	return &Server{timeouts: t}
}

func (s *Server) newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: s.timeouts.ReadHeader,
		WriteTimeout:      s.timeouts.Write,
		IdleTimeout:       s.timeouts.Idle,
	}
}

// normalizeAddr accepts "8000", ":8000" or "host:8000". Empty means the default port.
func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":" + defaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

var errNotListening = errors.New("server: Serve called before Listen")

// Listen binds the port and prepares the http.Server. Once it returns, the
// port accepts connections; they are answered after Serve starts.
func (s *Server) Listen(port string, handler http.Handler) error {
	addr := normalizeAddr(port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.httpServer = s.newHTTPServer(addr, handler)
	s.mu.Unlock()
	return nil
}

// Addr is the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve blocks answering requests on the listener from Listen. A graceful
// Shutdown returns nil.
func (s *Server) Serve() error {
	s.mu.Lock()
	hs, ln := s.httpServer, s.listener
	s.mu.Unlock()
	if hs == nil {
		return errNotListening
	}
	if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run is Listen followed by Serve.
func (s *Server) Run(port string, handler http.Handler) error {
	if err := s.Listen(port, handler); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown gracefully stops the server, allowing in-flight requests to
// complete. Before Listen it does nothing.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	hs := s.httpServer
	s.mu.Unlock()
	if hs == nil {
		return nil
	}
	return hs.Shutdown(ctx)
}
