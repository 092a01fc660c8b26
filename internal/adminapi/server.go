// Package adminapi is the Admin HTTP API: a CRUD surface over the
// Instrument Store and a read-only view of the Correlation Graph. The
// control plane for operators; the read-only WebSocket transport is the
// data plane for subscribers.
package adminapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"bondstream/internal/correlation"
	"bondstream/internal/store"
)

// Server runs the Admin HTTP API.
type Server struct {
	handlers *Handlers
	server   *http.Server
	logger   *slog.Logger
}

// New creates an Admin HTTP API server listening on addr, backed by st and
// graph. removals may be nil.
func New(addr string, st *store.Store, graph *correlation.Graph, removals RemovalListener, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	handlers := NewHandlers(st, graph, removals, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.HandleFunc("GET /api/instruments", handlers.HandleList)
	mux.HandleFunc("POST /api/instruments", handlers.HandleInsert)
	mux.HandleFunc("GET /api/instruments/{id}", handlers.HandleGet)
	mux.HandleFunc("PATCH /api/instruments/{id}", handlers.HandleUpdate)
	mux.HandleFunc("DELETE /api/instruments/{id}", handlers.HandleRemove)
	mux.HandleFunc("GET /api/correlation/{id}", handlers.HandleCorrelation)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handlers: handlers,
		server:   httpServer,
		logger:   logger.With("component", "admin-api"),
	}
}

// Start binds the listener synchronously so a bad address fails here, then
// serves from its own goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("admin api listen: %w", err)
	}
	go func() {
		s.logger.Info("admin api starting", "addr", s.server.Addr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("admin api server error", "err", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the HTTP server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping admin api")
	return s.server.Shutdown(ctx)
}
