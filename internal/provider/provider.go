// Package provider implements country-data sources: the REST Countries HTTP
// API and a JSON snapshot file written by a previous build.
package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// Provider types.
const (
	TypeRestCountries = "restcountries"
	TypeFile          = "file"
)

var (
	// ErrNotFound is returned when the provider has no country for a code.
	ErrNotFound = errors.New("country not found")
	// ErrMalformed is returned when a payload cannot be decoded.
	ErrMalformed = errors.New("malformed country payload")
)

// StatusError is returned for a non-success HTTP status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-200 status code: %d (%s)", e.Code, e.URL)
}

// Config selects and configures a provider.
type Config struct {
	Type    string
	BaseURL string
	File    string
	Timeout time.Duration
	Fields  []string
	Logger  *slog.Logger
}

// New creates the provider described by cfg.
func New(cfg Config) (core.Provider, error) {
	switch cfg.Type {
	case "", TypeRestCountries:
		c := NewRestCountries(cfg.BaseURL, cfg.Timeout)
		c.Fields = cfg.Fields
		if cfg.Logger != nil {
			c.logger = cfg.Logger
		}
		return c, nil
	case TypeFile:
		if cfg.File == "" {
			return nil, fmt.Errorf("file provider requires a snapshot path")
		}
		return NewFile(cfg.File), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}
