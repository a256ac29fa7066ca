// Package config holds the defaults and config file discovery shared by the
// CLI commands.
package config

import "time"

// Default configuration values.
const (
	DefaultProviderType   = "restcountries"
	DefaultBaseURL        = "https://restcountries.com/v2"
	DefaultOutputDir      = "dist"
	DefaultConcurrency    = 8
	DefaultPort           = 8765
	DefaultSearchDebounce = 200 * time.Millisecond
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogFormat      = "text"

	// DefaultSessionSecret is only suitable for local use.
	DefaultSessionSecret = "atlas-dev-session-secret-change-me" //nolint:gosec // G101: development default
)

// DefaultFields is the field projection requested from the REST provider.
var DefaultFields = []string{
	"name", "alpha3Code", "region", "subregion", "population", "area", "gini",
	"capital", "nativeName", "flag", "languages", "currencies", "borders",
}
