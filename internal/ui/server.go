// Package ui provides the live web UI: the searchable countries table and the
// country detail pages, served over HTTP with datastar SSE updates.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/directory"
	homeFeature "github.com/leapstack-labs/atlas/internal/ui/features/home"
	"github.com/leapstack-labs/atlas/internal/ui/notifier"
	"github.com/leapstack-labs/atlas/internal/ui/router"
	"github.com/leapstack-labs/atlas/pkg/core"
)

const reloadDebounce = 100 * time.Millisecond

// Server is the main UI server.
type Server struct {
	provider     core.Provider
	snapshot     *directory.Snapshot
	resolver     *borders.Resolver
	sessionStore *sessions.CookieStore
	port         int
	watchFile    string
	dev          bool
	debounce     time.Duration
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Provider core.Provider
	// Snapshot is the directory loaded at startup.
	Snapshot      *directory.Snapshot
	Port          int
	SessionSecret string
	// WatchFile, when set, is a snapshot file whose changes reload the directory.
	WatchFile string
	// MaxConcurrency bounds neighbour lookups per request; zero is unbounded.
	MaxConcurrency int
	SearchDebounce time.Duration
	Dev            bool
	Logger         *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	snapshot := cfg.Snapshot
	if snapshot == nil {
		snapshot = directory.NewSnapshot(nil)
	}

	return &Server{
		provider:     cfg.Provider,
		snapshot:     snapshot,
		resolver:     borders.NewResolver(cfg.Provider, borders.WithLimit(cfg.MaxConcurrency), borders.WithLogger(logger)),
		sessionStore: sessionStore,
		port:         cfg.Port,
		watchFile:    cfg.WatchFile,
		dev:          cfg.Dev,
		debounce:     cfg.SearchDebounce,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the HTTP handler with all middleware and routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Compress(5),
	)

	deps := router.Deps{
		Provider:     s.provider,
		Snapshot:     s.snapshot,
		Resolver:     s.resolver,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Home:         homeFeature.Options{SearchDebounce: s.debounce},
		Logger:       s.logger,
	}
	if err := router.SetupRoutes(r, deps, s.IsDev()); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port), "countries", s.snapshot.Current().Len())

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

	if s.watchFile != "" {
		eg.Go(func() error {
			return s.watchSnapshot(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether the hot reload endpoints are mounted.
func (s *Server) IsDev() bool {
	return s.dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Snapshot returns the directory snapshot the server reads from.
func (s *Server) Snapshot() *directory.Snapshot {
	return s.snapshot
}

// Reload re-fetches the directory and tells every open listing page to refresh.
// On failure the previous directory stays in place.
func (s *Server) Reload(ctx context.Context) error {
	n, err := s.snapshot.Reload(ctx, s.provider)
	if err != nil {
		return err
	}
	u := s.notifier.Broadcast(n)
	s.logger.Info("directory reloaded", "countries", n, "seq", u.Seq)
	return nil
}

// watchSnapshot reloads the directory when the snapshot file changes.
// The parent directory is watched so that atomic renames are seen too.
func (s *Server) watchSnapshot(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(s.watchFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch snapshot", "file", target, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}
	s.logger.Debug("watching snapshot", "file", target)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.logger.Debug("snapshot changed, reloading", "file", event.Name)
				if err := s.Reload(ctx); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
