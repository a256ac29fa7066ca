// Package config provides configuration management for the atlas CLI.
//
// Values are layered from defaults, an atlas.yaml file, ATLAS_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"time"

	sharedcfg "github.com/leapstack-labs/atlas/internal/config"
	"github.com/leapstack-labs/atlas/internal/provider"
)

// ProviderConfig selects the country-data source.
type ProviderConfig struct {
	Type    string `koanf:"type" yaml:"type"`
	BaseURL string `koanf:"base_url" yaml:"base_url"`
	// File is the JSON snapshot read by the file provider.
	File string `koanf:"file" yaml:"file,omitempty"`
	// Timeout bounds each request; zero means no timeout.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	// MaxConcurrency bounds neighbour lookups; zero means unbounded.
	MaxConcurrency int      `koanf:"max_concurrency" yaml:"max_concurrency"`
	Fields         []string `koanf:"fields" yaml:"fields,flow"`
}

// BuildConfig holds configuration for the static build.
type BuildConfig struct {
	OutputDir   string `koanf:"output_dir" yaml:"output_dir"`
	Concurrency int    `koanf:"concurrency" yaml:"concurrency"`
	Minify      bool   `koanf:"minify" yaml:"minify"`
	CheckLinks  bool   `koanf:"check_links" yaml:"check_links"`
	BasePath    string `koanf:"base_path" yaml:"base_path,omitempty"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port           int           `koanf:"port" yaml:"port"`
	AutoOpen       bool          `koanf:"auto_open" yaml:"auto_open"`
	Watch          bool          `koanf:"watch" yaml:"watch"`
	SessionSecret  string        `koanf:"session_secret" yaml:"session_secret"`
	SearchDebounce time.Duration `koanf:"search_debounce" yaml:"search_debounce"`
	Dev            bool          `koanf:"dev" yaml:"dev"`
}

// Config holds all CLI configuration options.
type Config struct {
	Provider     ProviderConfig `koanf:"provider" yaml:"provider"`
	Build        BuildConfig    `koanf:"build" yaml:"build"`
	UI           UIConfig       `koanf:"ui" yaml:"ui"`
	OutputFormat string         `koanf:"output" yaml:"output"`
	Verbose      bool           `koanf:"verbose" yaml:"verbose"`
	LogFormat    string         `koanf:"log_format" yaml:"log_format"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// ProviderOptions converts the provider section into provider.Config.
func (c *Config) ProviderOptions() provider.Config {
	return provider.Config{
		Type:    c.Provider.Type,
		BaseURL: c.Provider.BaseURL,
		File:    c.Provider.File,
		Timeout: c.Provider.Timeout,
		Fields:  c.Provider.Fields,
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Type:    sharedcfg.DefaultProviderType,
			BaseURL: sharedcfg.DefaultBaseURL,
			Fields:  append([]string(nil), sharedcfg.DefaultFields...),
		},
		Build: BuildConfig{
			OutputDir:   sharedcfg.DefaultOutputDir,
			Concurrency: sharedcfg.DefaultConcurrency,
			Minify:      true,
			CheckLinks:  true,
		},
		UI: UIConfig{
			Port:           sharedcfg.DefaultPort,
			AutoOpen:       true,
			Watch:          true,
			SessionSecret:  sharedcfg.DefaultSessionSecret,
			SearchDebounce: sharedcfg.DefaultSearchDebounce,
		},
		OutputFormat: sharedcfg.DefaultOutput,
		LogFormat:    sharedcfg.DefaultLogFormat,
	}
}
