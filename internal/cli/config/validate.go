package config

import (
	"fmt"

	"github.com/leapstack-labs/atlas/internal/provider"
)

// Output modes accepted by the output key.
var validOutputs = map[string]bool{"": true, "auto": true, "text": true, "markdown": true, "json": true}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Provider.Type {
	case provider.TypeRestCountries:
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required for the %s provider", provider.TypeRestCountries)
		}
	case provider.TypeFile:
		if c.Provider.File == "" {
			return fmt.Errorf("provider.file is required for the %s provider\nHint: point it at data/countries.json from a previous build", provider.TypeFile)
		}
	default:
		return fmt.Errorf("unknown provider type %q (want %s or %s)", c.Provider.Type, provider.TypeRestCountries, provider.TypeFile)
	}

	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must not be negative")
	}
	if c.Provider.MaxConcurrency < 0 {
		return fmt.Errorf("provider.max_concurrency must not be negative")
	}
	if c.Build.Concurrency < 0 {
		return fmt.Errorf("build.concurrency must not be negative")
	}
	if c.UI.Port < 1 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port must be between 1 and 65535, got %d", c.UI.Port)
	}
	if !validOutputs[c.OutputFormat] {
		return fmt.Errorf("unknown output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}
