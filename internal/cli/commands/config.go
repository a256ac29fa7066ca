package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/atlas/internal/cli/config"
	"github.com/leapstack-labs/atlas/internal/cli/output"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, atlas.yaml, ATLAS_
environment variables and flags. The output is valid atlas.yaml.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(cmdCtx.Cfg)
	}

	if file := config.GetConfigFileUsed(); file != "" {
		r.Println("# " + file)
	}

	enc := yaml.NewEncoder(r.Writer())
	enc.SetIndent(2)
	if err := enc.Encode(cmdCtx.Cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
