package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedcfg "github.com/leapstack-labs/atlas/internal/config"
	"github.com/leapstack-labs/atlas/internal/provider"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, provider.TypeRestCountries, cfg.Provider.Type)
	assert.Equal(t, sharedcfg.DefaultBaseURL, cfg.Provider.BaseURL)
	assert.Equal(t, sharedcfg.DefaultFields, cfg.Provider.Fields)
	assert.Equal(t, sharedcfg.DefaultPort, cfg.UI.Port)
	assert.Equal(t, sharedcfg.DefaultSearchDebounce, cfg.UI.SearchDebounce)
	assert.True(t, cfg.Build.Minify)
	assert.True(t, cfg.Build.CheckLinks)
	assert.Equal(t, filepath.Join(tmpDir, sharedcfg.DefaultOutputDir), cfg.Build.OutputDir)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	cfgPath := writeConfig(t, tmpDir, `provider:
  type: file
  file: data/countries.json
  timeout: 3s
  fields: [name, cca3]
build:
  output_dir: public
  concurrency: 2
  minify: false
ui:
  port: 9000
  search_debounce: 50ms
log_format: json
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, provider.TypeFile, cfg.Provider.Type)
	assert.Equal(t, filepath.Join(tmpDir, "data", "countries.json"), cfg.Provider.File)
	assert.Equal(t, 3*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, []string{"name", "cca3"}, cfg.Provider.Fields)
	assert.Equal(t, filepath.Join(tmpDir, "public"), cfg.Build.OutputDir)
	assert.Equal(t, 2, cfg.Build.Concurrency)
	assert.False(t, cfg.Build.Minify)
	assert.True(t, cfg.Build.CheckLinks, "unset keys keep their defaults")
	assert.Equal(t, 9000, cfg.UI.Port)
	assert.Equal(t, 50*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_FindsFileUpward(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "ui:\n  port: 9100\n")
	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.UI.Port)
	assert.Equal(t, tmpDir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(tmpDir, sharedcfg.DefaultOutputDir), cfg.Build.OutputDir)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	cfgPath := writeConfig(t, tmpDir, `provider:
  base_url: http://from-file
ui:
  port: 9000
`)
	t.Setenv("ATLAS_PROVIDER_BASE_URL", "http://from-env")
	t.Setenv("ATLAS_PROVIDER_MAX_CONCURRENCY", "4")
	t.Setenv("ATLAS_PROVIDER_FIELDS", "name,cca3,borders")
	t.Setenv("ATLAS_UI_SEARCH_DEBOUNCE", "1s")
	t.Setenv("ATLAS_VERBOSE", "true")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.Provider.BaseURL)
	assert.Equal(t, 4, cfg.Provider.MaxConcurrency)
	assert.Equal(t, []string{"name", "cca3", "borders"}, cfg.Provider.Fields)
	assert.Equal(t, time.Second, cfg.UI.SearchDebounce)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 9000, cfg.UI.Port, "file value survives when env is unset")
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	cfgPath := writeConfig(t, tmpDir, "build:\n  output_dir: from_file\n")
	t.Setenv("ATLAS_BUILD_OUTPUT_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("out-dir", "", "output directory")
	flags.Duration("timeout", 0, "timeout")
	flags.Int("port", 0, "port")
	require.NoError(t, flags.Set("out-dir", "from_flag"))
	require.NoError(t, flags.Set("timeout", "750ms"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "from_flag"), cfg.Build.OutputDir)
	assert.Equal(t, 750*time.Millisecond, cfg.Provider.Timeout)
	assert.Equal(t, sharedcfg.DefaultPort, cfg.UI.Port, "unset flag does not override")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	cfgPath := writeConfig(t, tmpDir, "ui:\n  port: 9000\n")
	t.Setenv("ATLAS_UI_PORT", "9200")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", sharedcfg.DefaultPort, "port")

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.UI.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, t.TempDir(), "provider:\n  type: file\n")

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider.file is required")
	assert.Nil(t, GetCurrentConfig())
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"ATLAS_PROVIDER_BASE_URL":        "provider.base_url",
		"ATLAS_BUILD_OUTPUT_DIR":         "build.output_dir",
		"ATLAS_UI_SESSION_SECRET":        "ui.session_secret",
		"ATLAS_LOG_FORMAT":               "log_format",
		"ATLAS_OUTPUT":                   "output",
		"ATLAS_PROVIDER_MAX_CONCURRENCY": "provider.max_concurrency",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:   "file provider",
			mutate: func(c *Config) { c.Provider.Type = provider.TypeFile; c.Provider.File = "countries.json" },
		},
		{
			name:      "unknown provider",
			mutate:    func(c *Config) { c.Provider.Type = "graphql" },
			errSubstr: "unknown provider type",
		},
		{
			name:      "missing base url",
			mutate:    func(c *Config) { c.Provider.BaseURL = "" },
			errSubstr: "provider.base_url is required",
		},
		{
			name:      "negative timeout",
			mutate:    func(c *Config) { c.Provider.Timeout = -time.Second },
			errSubstr: "provider.timeout",
		},
		{
			name:      "negative max concurrency",
			mutate:    func(c *Config) { c.Provider.MaxConcurrency = -1 },
			errSubstr: "provider.max_concurrency",
		},
		{
			name:      "negative build concurrency",
			mutate:    func(c *Config) { c.Build.Concurrency = -2 },
			errSubstr: "build.concurrency",
		},
		{
			name:      "port out of range",
			mutate:    func(c *Config) { c.UI.Port = 70000 },
			errSubstr: "ui.port",
		},
		{
			name:      "unknown output",
			mutate:    func(c *Config) { c.OutputFormat = "yaml" },
			errSubstr: "unknown output format",
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.LogFormat = "logfmt" },
			errSubstr: "unknown log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ProviderOptions(t *testing.T) {
	cfg := Default()
	cfg.Provider.Timeout = 2 * time.Second
	opts := cfg.ProviderOptions()
	assert.Equal(t, cfg.Provider.Type, opts.Type)
	assert.Equal(t, cfg.Provider.BaseURL, opts.BaseURL)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, cfg.Provider.Fields, opts.Fields)
}

func TestGetLogger_Fallback(t *testing.T) {
	logger := GetLogger(t.Context())
	require.NotNil(t, logger)
	logger.Info("discarded")

	custom := NewLogger(os.Stderr, true, "json")
	assert.Same(t, custom, GetLogger(WithLogger(t.Context(), custom)))
}
