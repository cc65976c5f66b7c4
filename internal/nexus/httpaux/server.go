package httpaux

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/mds"
)

// Config is the auxiliary HTTP surface's own boot configuration.
type Config struct {
	Addr string // e.g. ":9091"
}

// Server is the nexus's auxiliary HTTP listener: metrics, liveness, and the
// read-only MDS dump. It runs independently of the UDS config/exec control
// plane and can be omitted entirely; Start and Stop require a non-nil
// *Server, so callers that omit it skip those calls.
type Server struct {
	server       *http.Server
	shutdownOnce sync.Once
}

// NewServer builds a Server serving reg's metrics and tree's dump at addr.
func NewServer(cfg Config, reg *prometheus.Registry, tree *mds.Tree) *Server {
	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(reg, tree),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("httpaux server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("httpaux server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if shutdownErr := s.server.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("httpaux server shutdown error: %w", shutdownErr)
			logger.Error("httpaux server shutdown error", logger.Err(shutdownErr))
			return
		}
		logger.Info("httpaux server stopped gracefully")
	})
	return err
}
