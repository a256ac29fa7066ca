// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/directory"
	countryFeature "github.com/leapstack-labs/atlas/internal/ui/features/country"
	homeFeature "github.com/leapstack-labs/atlas/internal/ui/features/home"
	"github.com/leapstack-labs/atlas/internal/ui/notifier"
	"github.com/leapstack-labs/atlas/internal/ui/resources"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// Deps are the shared dependencies handed to every feature.
type Deps struct {
	Provider     core.Provider
	Snapshot     *directory.Snapshot
	Resolver     *borders.Resolver
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Home         homeFeature.Options
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps, isDev bool) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler())
	router.Get("/healthz", healthz(deps.Snapshot))

	if err := homeFeature.SetupRoutes(router, deps.Snapshot, deps.SessionStore, deps.Notifier, deps.Home, deps.Logger); err != nil {
		return err
	}

	if err := countryFeature.SetupRoutes(router, deps.Provider, deps.Resolver, deps.Logger); err != nil {
		return err
	}

	return nil
}

func healthz(snapshot *directory.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if snapshot.Current().Len() == 0 {
			http.Error(w, "directory is empty", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
