package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/atlas/internal/cli/output"
	"github.com/leapstack-labs/atlas/internal/site"
)

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the static site",
		Long: `Fetch the full country list once, enumerate one detail page per country
and write a self-contained static site.

Output layout:
  index.html                 searchable country table
  country/<CODE>/index.html  one detail page per country
  data/countries.json        the fetched list, usable with --provider file
  manifest.json              build id, time and per-region counts
  static/                    stylesheet and client-side filter`,
		Example: `  # Build into ./dist
  atlas build

  # Build for hosting under /atlas, without minification
  atlas build --out-dir public --base-path /atlas --minify=false

  # Rebuild offline from a previous snapshot
  atlas build --provider file --snapshot dist/data/countries.json --out-dir dist2`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}

	cmd.Flags().String("out-dir", "", "Output directory (default: dist)")
	cmd.Flags().Int("concurrency", 0, "Detail pages rendered at once (default: 8)")
	cmd.Flags().Bool("minify", true, "Minify static assets")
	cmd.Flags().Bool("check-links", true, "Verify internal links after writing")
	cmd.Flags().String("base-path", "", "Path prefix for every link")

	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	p, err := cmdCtx.Provider()
	if err != nil {
		return err
	}

	gen := site.NewGenerator(p, cmdCtx.Resolver(p), site.Options{
		OutputDir:    cfg.Build.OutputDir,
		BasePath:     cfg.Build.BasePath,
		Concurrency:  cfg.Build.Concurrency,
		Minify:       cfg.Build.Minify,
		CheckLinks:   cfg.Build.CheckLinks,
		ProviderName: cfg.Provider.Type,
	}, cmdCtx.Logger)

	result, err := gen.Build(cmd.Context())
	if err != nil {
		var broken *site.BrokenLinksError
		if errors.As(err, &broken) {
			for _, l := range broken.Links {
				r.Error(fmt.Sprintf("%s: broken link %s", l.Page, l.Href))
			}
		}
		return fmt.Errorf("build failed: %w", err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(result)
	}

	for _, code := range result.BorderFailures {
		r.Warning(fmt.Sprintf("%s: neighbour panel left empty", code))
	}
	r.Success(fmt.Sprintf("Built %d pages for %d countries in %s",
		result.Pages, result.Manifest.CountryCount, result.Duration.Round(time.Millisecond)))
	r.KeyValue("Output", cfg.Build.OutputDir)
	r.KeyValue("Build ID", result.Manifest.BuildID)
	return nil
}
