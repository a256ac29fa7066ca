// Package country provides the country detail feature: the detail page and
// the neighbour panel stream.
package country

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// SetupRoutes configures routes for the country feature.
func SetupRoutes(router chi.Router, lookup core.AlphaLookup, resolver *borders.Resolver, logger *slog.Logger) error {
	handlers := NewHandlers(lookup, resolver, logger)

	router.Get("/country/{code}", handlers.DetailPage)
	router.Get("/country/{code}/borders", handlers.Borders)

	return nil
}
