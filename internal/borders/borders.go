// Package borders resolves a country's neighbour codes into full records.
//
// Lookups fan out concurrently, one per code, and are joined with an
// all-complete barrier. Results are always returned in input order.
package borders

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// LookupError reports which neighbour lookup failed.
type LookupError struct {
	Code core.Code
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("resolve border %s: %v", e.Code, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Result is the outcome of a single neighbour lookup.
type Result struct {
	Code    core.Code
	Country core.Country
	Err     error
}

// Resolver resolves border codes through an AlphaLookup.
type Resolver struct {
	lookup core.AlphaLookup
	limit  int
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLimit bounds the number of lookups in flight. Zero or less means unbounded.
func WithLimit(n int) Option {
	return func(r *Resolver) { r.limit = n }
}

// WithLogger sets the logger used for per-lookup debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a Resolver.
func NewResolver(lookup core.AlphaLookup, opts ...Option) *Resolver {
	r := &Resolver{
		lookup: lookup,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up every code and returns the countries in the same order as codes.
// If any lookup fails the whole call fails with a *LookupError and no partial list.
// Every started lookup is awaited before returning; a failure does not cancel the others.
func (r *Resolver) Resolve(ctx context.Context, codes []core.Code) ([]core.Country, error) {
	if len(codes) == 0 {
		return []core.Country{}, nil
	}

	countries := make([]core.Country, len(codes))

	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}

	for i, code := range codes {
		g.Go(func() error {
			c, err := r.lookup.Alpha(ctx, code)
			if err != nil {
				r.logger.Debug("border lookup failed", "code", code, "error", err)
				return &LookupError{Code: code, Err: err}
			}
			countries[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return countries, nil
}

// ResolveEach looks up every code and reports each outcome separately, in input order.
// It never fails as a whole: a bad code only affects its own Result.
func (r *Resolver) ResolveEach(ctx context.Context, codes []core.Code) []Result {
	results := make([]Result, len(codes))
	if len(codes) == 0 {
		return results
	}

	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}

	for i, code := range codes {
		g.Go(func() error {
			c, err := r.lookup.Alpha(ctx, code)
			results[i] = Result{Code: code, Country: c}
			if err != nil {
				results[i].Err = &LookupError{Code: code, Err: err}
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Countries returns the successfully resolved countries of results, in order.
func Countries(results []Result) []core.Country {
	out := make([]core.Country, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			out = append(out, res.Country)
		}
	}
	return out
}
