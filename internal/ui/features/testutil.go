// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/provider"
	"github.com/leapstack-labs/atlas/internal/testutil"
	"github.com/leapstack-labs/atlas/internal/ui/notifier"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// FakeProvider is an in-memory core.Provider with injectable failures and delays.
type FakeProvider struct {
	mu        sync.RWMutex
	countries []core.Country
	failures  map[core.Code]error
	delays    map[core.Code]time.Duration

	AlphaCalls atomic.Int64
}

// NewFakeProvider creates a FakeProvider serving countries.
func NewFakeProvider(countries ...core.Country) *FakeProvider {
	return &FakeProvider{
		countries: countries,
		failures:  make(map[core.Code]error),
		delays:    make(map[core.Code]time.Duration),
	}
}

// All returns every country.
func (p *FakeProvider) All(_ context.Context) ([]core.Country, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]core.Country(nil), p.countries...), nil
}

// Alpha returns the country for code, after any configured delay.
func (p *FakeProvider) Alpha(ctx context.Context, code core.Code) (core.Country, error) {
	p.AlphaCalls.Add(1)

	p.mu.RLock()
	delay := p.delays[code]
	failure := p.failures[code]
	p.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return core.Country{}, ctx.Err()
		}
	}
	if failure != nil {
		return core.Country{}, failure
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.countries {
		if c.Alpha3Code == code {
			return c, nil
		}
	}
	return core.Country{}, fmt.Errorf("alpha %s: %w", code, provider.ErrNotFound)
}

// Fail makes lookups of code return err.
func (p *FakeProvider) Fail(code core.Code, err error) {
	p.mu.Lock()
	p.failures[code] = err
	p.mu.Unlock()
}

// Delay makes lookups of code wait for d.
func (p *FakeProvider) Delay(code core.Code, d time.Duration) {
	p.mu.Lock()
	p.delays[code] = d
	p.mu.Unlock()
}

// Set replaces the served countries.
func (p *FakeProvider) Set(countries ...core.Country) {
	p.mu.Lock()
	p.countries = countries
	p.mu.Unlock()
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Provider     *FakeProvider
	Snapshot     *directory.Snapshot
	Resolver     *borders.Resolver
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Logger       *slog.Logger
}

// SetupTestFixture creates a fixture whose directory holds countries
// (SampleCountries when none are given).
func SetupTestFixture(t *testing.T, countries ...core.Country) *TestFixture {
	t.Helper()

	if len(countries) == 0 {
		countries = SampleCountries()
	}

	logger := testutil.NewTestLogger(t)
	p := NewFakeProvider(countries...)

	return &TestFixture{
		Provider:     p,
		Snapshot:     directory.NewSnapshot(directory.New(countries)),
		Resolver:     borders.NewResolver(p, borders.WithLogger(logger)),
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		Logger:       logger,
	}
}

// SampleCountries returns a small fixed data set: France with its neighbours
// Germany, Spain and Italy, plus Japan which has none.
func SampleCountries() []core.Country {
	num := func(v float64) *float64 { return &v }
	return []core.Country{
		{
			Name: "France", Alpha3Code: "FRA", Region: "Europe", Subregion: "Western Europe",
			Population: 67391582, Area: num(640679), Gini: num(32.4),
			Capital: "Paris", NativeName: "France",
			Languages:  []core.Language{{Name: "French"}},
			Currencies: []core.Currency{{Code: "EUR", Name: "Euro", Symbol: "€"}},
			Borders:    []core.Code{"DEU", "ESP", "ITA"},
		},
		{Name: "Germany", Alpha3Code: "DEU", Region: "Europe", Subregion: "Central Europe", Population: 83240525, Borders: []core.Code{"FRA"}},
		{Name: "Spain", Alpha3Code: "ESP", Region: "Europe", Subregion: "Southern Europe", Population: 47351567, Borders: []core.Code{"FRA"}},
		{Name: "Italy", Alpha3Code: "ITA", Region: "Europe", Subregion: "Southern Europe", Population: 59554023, Borders: []core.Code{"FRA"}},
		{Name: "Japan", Alpha3Code: "JPN", Region: "Asia", Subregion: "Eastern Asia", Population: 125836021},
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	t.Helper()
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// SignalsQuery encodes datastar signals the way the client sends them on GET.
func SignalsQuery(signalsJSON string) string {
	return "datastar=" + url.QueryEscape(signalsJSON)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
