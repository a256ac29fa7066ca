// Package home provides the countries listing feature: the home page, the
// live search endpoint and the reload stream.
package home

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/ui/notifier"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(
	router chi.Router,
	snapshot *directory.Snapshot,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	opts Options,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(snapshot, sessionStore, notify, opts, logger)

	router.Get("/", handlers.HomePage)
	router.Get("/countries/search", handlers.Search)
	router.Get("/updates", handlers.Updates)

	return nil
}
