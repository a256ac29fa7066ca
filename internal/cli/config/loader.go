package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	sharedcfg "github.com/leapstack-labs/atlas/internal/config"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "ATLAS_"

// loggerKey is used to store logger in context.
type loggerKey struct{}

// Package-level config file tracking
var (
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// sections are the nested config tables; env vars address them with their
// first underscore, e.g. ATLAS_PROVIDER_BASE_URL -> provider.base_url.
var sections = []string{"provider", "build", "ui"}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"provider":        "provider.type",
	"base-url":        "provider.base_url",
	"snapshot":        "provider.file",
	"timeout":         "provider.timeout",
	"max-concurrency": "provider.max_concurrency",
	"out-dir":         "build.output_dir",
	"concurrency":     "build.concurrency",
	"minify":          "build.minify",
	"check-links":     "build.check_links",
	"base-path":       "build.base_path",
	"port":            "ui.port",
	"watch":           "ui.watch",
	"dev":             "ui.dev",
	"output":          "output",
	"verbose":         "verbose",
	"log-format":      "log_format",
}

// ResetConfig clears the loaded config. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	currentConfig = nil
}

func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"provider.type":            d.Provider.Type,
		"provider.base_url":        d.Provider.BaseURL,
		"provider.file":            d.Provider.File,
		"provider.timeout":         d.Provider.Timeout,
		"provider.max_concurrency": d.Provider.MaxConcurrency,
		"provider.fields":          d.Provider.Fields,
		"build.output_dir":         d.Build.OutputDir,
		"build.concurrency":        d.Build.Concurrency,
		"build.minify":             d.Build.Minify,
		"build.check_links":        d.Build.CheckLinks,
		"build.base_path":          d.Build.BasePath,
		"ui.port":                  d.UI.Port,
		"ui.auto_open":             d.UI.AutoOpen,
		"ui.watch":                 d.UI.Watch,
		"ui.session_secret":        d.UI.SessionSecret,
		"ui.search_debounce":       d.UI.SearchDebounce,
		"ui.dev":                   d.UI.Dev,
		"output":                   d.OutputFormat,
		"verbose":                  d.Verbose,
		"log_format":               d.LogFormat,
	}
}

// envKey maps ATLAS_PROVIDER_BASE_URL to provider.base_url.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// findConfigFile returns the explicit path, or the nearest atlas.yaml above the
// working directory.
func findConfigFile(explicit string) (path, root string) {
	if explicit != "" {
		if abs, err := filepath.Abs(explicit); err == nil {
			return explicit, filepath.Dir(abs)
		}
		return explicit, filepath.Dir(explicit)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", "."
	}
	if root := sharedcfg.FindProjectRoot(cwd); root != "" {
		return sharedcfg.FindConfigFile(root), root
	}
	return "", cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	var projectRoot string
	configFileUsed, projectRoot = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (ATLAS_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only those explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve paths against the project root
	cfg.ProjectRoot = projectRoot
	cfg.Build.OutputDir = resolvePathRelativeTo(cfg.Build.OutputDir, projectRoot)
	cfg.Provider.File = resolvePathRelativeTo(cfg.Provider.File, projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// NewLogger creates the CLI logger: Debug level when verbose, JSON records
// when format is "json".
func NewLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
