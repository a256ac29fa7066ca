package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/cli/config"
	"github.com/leapstack-labs/atlas/internal/cli/output"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/provider"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Provider creates the configured country-data provider.
func (c *CommandContext) Provider() (core.Provider, error) {
	opts := c.Cfg.ProviderOptions()
	opts.Logger = c.Logger
	p, err := provider.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return p, nil
}

// Resolver creates a border resolver over p honouring provider.max_concurrency.
func (c *CommandContext) Resolver(p core.AlphaLookup) *borders.Resolver {
	return borders.NewResolver(p,
		borders.WithLimit(c.Cfg.Provider.MaxConcurrency),
		borders.WithLogger(c.Logger),
	)
}

// LoadDirectory fetches the full list once and wraps it in a Directory.
func (c *CommandContext) LoadDirectory(ctx context.Context, p core.Provider) (*directory.Directory, error) {
	countries, err := p.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}
	c.Logger.Debug("fetched countries", slog.Int("count", len(countries)))
	return directory.New(countries), nil
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
