// Package ui provides the bsql playground server.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/bettersql/internal/ui/notifier"
	"github.com/leapstack-labs/bettersql/internal/ui/router"
	"github.com/leapstack-labs/bettersql/internal/watch"
	"golang.org/x/sync/errgroup"
)

// Server is the playground server.
type Server struct {
	port     int
	cors     bool
	logger   *slog.Logger
	notifier *notifier.Notifier[watch.Event]
	watcher  *watch.Watcher
}

// Config holds configuration for the playground server.
type Config struct {
	Port   int
	CORS   bool
	Logger *slog.Logger

	// Watch enables recompiling sources on change; each compile is pushed
	// to /api/events subscribers. Nil disables watching.
	Watch *watch.Config
}

// NewServer creates a new playground server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	s := &Server{
		port:     cfg.Port,
		cors:     cfg.CORS,
		logger:   logger,
		notifier: notifier.New[watch.Event](),
	}

	if cfg.Watch != nil {
		wc := *cfg.Watch
		if wc.Logger == nil {
			wc.Logger = logger
		}
		next := wc.OnCompile
		wc.OnCompile = func(ev watch.Event) {
			s.notifier.Broadcast(ev)
			if next != nil {
				next(ev)
			}
		}
		s.watcher = watch.New(wc)
	}

	return s
}

// Handler builds the HTTP handler serving the playground.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.notifier, s.logger, s.cors); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting playground server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watcher != nil {
		if _, err := s.watcher.CompileAll(); err != nil {
			return err
		}
		eg.Go(func() error {
			return s.watcher.Run(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down playground server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier[watch.Event] {
	return s.notifier
}

// Watcher returns the file watcher, or nil when watching is disabled.
func (s *Server) Watcher() *watch.Watcher {
	return s.watcher
}
