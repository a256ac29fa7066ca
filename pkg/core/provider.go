package core

import "context"

// AlphaLookup fetches a single country by alpha-3 code.
type AlphaLookup interface {
	Alpha(ctx context.Context, code Code) (Country, error)
}

// Provider is a read-only source of country records.
type Provider interface {
	AlphaLookup
	// All returns every country in provider order.
	All(ctx context.Context) ([]Country, error)
}

// AlphaLookupFunc adapts a plain function to AlphaLookup.
type AlphaLookupFunc func(ctx context.Context, code Code) (Country, error)

// Alpha calls f(ctx, code).
func (f AlphaLookupFunc) Alpha(ctx context.Context, code Code) (Country, error) {
	return f(ctx, code)
}
