// Package playground provides the HTTP API behind the bsql playground.
package playground

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/bettersql/internal/ui/notifier"
	"github.com/leapstack-labs/bettersql/internal/watch"
)

// SetupRoutes registers the playground feature routes.
func SetupRoutes(
	router chi.Router,
	notify *notifier.Notifier[watch.Event],
	logger *slog.Logger,
) error {
	handlers := NewHandlers(notify, logger)

	router.Get("/healthz", handlers.Healthz)

	router.Route("/api", func(r chi.Router) {
		r.Post("/compile", handlers.Compile)
		r.Post("/parse", handlers.Parse)
		r.Get("/examples", handlers.Examples)
		r.Get("/events", handlers.EventsSSE)
		r.Post("/playground", handlers.PlaygroundSSE)
	})

	return nil
}
