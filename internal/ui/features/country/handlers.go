package country

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/provider"
	"github.com/leapstack-labs/atlas/internal/ui/components"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// Handlers provides HTTP handlers for the country feature.
type Handlers struct {
	lookup   core.AlphaLookup
	resolver *borders.Resolver
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(lookup core.AlphaLookup, resolver *borders.Resolver, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		lookup:   lookup,
		resolver: resolver,
		logger:   logger,
	}
}

// DetailPage renders one country. The neighbour panel is filled in later by Borders.
func (h *Handlers) DetailPage(w http.ResponseWriter, r *http.Request) {
	code := core.NormalizeCode(chi.URLParam(r, "code"))

	country, err := h.lookup.Alpha(r.Context(), code)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, provider.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.logger.Warn("country lookup failed", "code", code, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	data := components.DetailData{
		Country: country,
		Paths:   components.LivePaths,
		Live:    true,
	}
	if err := components.DetailPage(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Borders resolves the neighbours of a country and patches the panel.
// If any neighbour fails to resolve, the panel is left empty and the error is
// reported to the browser console.
func (h *Handlers) Borders(w http.ResponseWriter, r *http.Request) {
	code := core.NormalizeCode(chi.URLParam(r, "code"))
	ctx := r.Context()

	sse := datastar.NewSSE(w, r)

	country, err := h.lookup.Alpha(ctx, code)
	if err != nil {
		h.logger.Warn("country lookup failed", "code", code, "error", err)
		_ = sse.ConsoleError(err)
		return
	}

	neighbours, err := h.resolver.Resolve(ctx, country.Borders)
	if err != nil {
		h.logger.Warn("failed to resolve borders", "code", code, "error", err)
		_ = sse.ConsoleError(err)
		return
	}

	if err := sse.PatchElementTempl(components.BordersPanel(neighbours, components.LivePaths)); err != nil {
		h.logger.Debug("borders patch failed", "error", err)
	}
}
