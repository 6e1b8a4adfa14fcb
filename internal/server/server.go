package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultPort is used when the config leaves port empty.
const DefaultPort = "8080"

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Second // websocket writes set their own deadlines
	idleTimeout       = 60 * time.Second
)

// Server wraps an *http.Server serving the panel API.
type Server struct {
	httpServer *http.Server
}

// New builds a server for the given port ("8080" or ":8080").
func New(port string, handler http.Handler) *Server {
	return &Server{httpServer: &http.Server{
		Addr:              normalizeAddr(port),
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}}
}

func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		port = DefaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// Addr is the listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Run blocks until the server stops. A stop caused by Shutdown is not an error.
func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
