// Package httpapi serves the docgate HTTP surface: upload, list, download,
// delete and query, plus health and consistency endpoints.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/docgate/internal/logger"
)

// ShutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const ShutdownTimeout = 10 * time.Second

// Config holds HTTP-layer options.
type Config struct {
	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty disables it.
	CORSOrigin string

	// MaxUploadBytes caps an upload request body. Zero means unlimited.
	MaxUploadBytes int64
}

// Server is the docgate HTTP server.
type Server struct {
	ports  *Ports
	cfg    Config
	router *mux.Router
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingService
	}
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		ports:  ports,
		cfg:    cfg,
		router: mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.HandleFunc("/files", s.handleListFiles).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/files/{fileName}", s.handleGetFile).Methods(http.MethodGet, http.MethodHead, http.MethodOptions)
	r.HandleFunc("/files/{fileName}", s.handleDeleteFile).Methods(http.MethodDelete, http.MethodOptions)
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/submit-query", s.handleQuery).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/consistency", s.handleConsistency).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "Route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: "Method not allowed"})
	})

	r.Use(logRequests)
	r.Use(mux.CORSMethodMiddleware(r))
	r.Use(s.cors)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", ln.Addr())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
