// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	playgroundFeature "github.com/leapstack-labs/bettersql/internal/ui/features/playground"
	"github.com/leapstack-labs/bettersql/internal/ui/notifier"
	"github.com/leapstack-labs/bettersql/internal/ui/resources"
	"github.com/leapstack-labs/bettersql/internal/watch"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	notify *notifier.Notifier[watch.Event],
	logger *slog.Logger,
	allowCORS bool,
) error {
	if allowCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:       []string{"*"},
			AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:       []string{"Content-Type", "Datastar-Request"},
			ExposedHeaders:       []string{"X-Request-Id"},
			OptionsSuccessStatus: http.StatusNoContent,
		}))
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())
	router.Handle("/", resources.IndexHandler())

	// Feature routes
	return playgroundFeature.SetupRoutes(router, notify, logger)
}
