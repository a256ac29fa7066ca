// Package site generates the static build of the country directory: a listing
// page, one detail page per country, the raw data snapshot and the shared assets.
// The output can be hosted on any static file server.
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/ui/components"
	"github.com/leapstack-labs/atlas/internal/ui/resources"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// Output layout.
const (
	IndexFile    = "index.html"
	DataDir      = "data"
	DataFile     = "countries.json"
	ManifestFile = "manifest.json"
	StaticDir    = "static"
	CountryDir   = "country"
)

// DefaultConcurrency is the number of detail pages rendered at once.
const DefaultConcurrency = 8

// Options configures a build.
type Options struct {
	OutputDir string
	// BasePath prefixes every link, for sites hosted under a subpath.
	BasePath string
	// Concurrency bounds detail page rendering; zero means DefaultConcurrency.
	Concurrency int
	// Minify runs the assets through esbuild.
	Minify bool
	// CheckLinks verifies every internal link after writing.
	CheckLinks bool
	// ProviderName is recorded in the manifest.
	ProviderName string
}

// Result summarizes a finished build.
type Result struct {
	Manifest *Manifest
	// Pages is the number of HTML files written.
	Pages int
	// BorderFailures lists countries whose neighbour panel was left empty.
	BorderFailures []core.Code
	Duration       time.Duration
}

// Generator builds the static site from a provider.
type Generator struct {
	provider core.Provider
	resolver *borders.Resolver
	opts     Options
	logger   *slog.Logger
}

// NewGenerator creates a new site generator.
func NewGenerator(p core.Provider, resolver *borders.Resolver, opts Options, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if resolver == nil {
		resolver = borders.NewResolver(p, borders.WithLogger(logger))
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Generator{
		provider: p,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

func (g *Generator) paths() components.Paths {
	return components.Paths{Base: g.opts.BasePath, Static: true}
}

// Build fetches the full list, enumerates every detail route from it and
// writes the site to the output directory.
func (g *Generator) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	countries, err := g.provider.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}
	dir := directory.New(countries)
	g.logger.Info("building site", "countries", dir.Len(), "output", g.opts.OutputDir)

	if err := os.MkdirAll(filepath.Join(g.opts.OutputDir, DataDir), 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := WriteJSON(filepath.Join(g.opts.OutputDir, DataDir, DataFile), dir.All()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", DataFile, err)
	}

	if err := g.writeAssets(); err != nil {
		return nil, fmt.Errorf("failed to write assets: %w", err)
	}

	if err := g.writeIndex(ctx, dir); err != nil {
		return nil, err
	}

	failures, err := g.writeCountryPages(ctx, dir.Codes())
	if err != nil {
		return nil, err
	}

	manifest := NewManifest(dir, g.opts.ProviderName)
	if err := WriteJSON(filepath.Join(g.opts.OutputDir, ManifestFile), manifest); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ManifestFile, err)
	}

	if g.opts.CheckLinks {
		broken, err := CheckLinks(g.opts.OutputDir, g.opts.BasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to check links: %w", err)
		}
		if len(broken) > 0 {
			return nil, &BrokenLinksError{Links: broken}
		}
	}

	result := &Result{
		Manifest:       manifest,
		Pages:          dir.Len() + 1,
		BorderFailures: failures,
		Duration:       time.Since(start),
	}
	g.logger.Info("site built", "pages", result.Pages, "build_id", manifest.BuildID, "duration", result.Duration)
	return result, nil
}

func (g *Generator) writeIndex(ctx context.Context, dir *directory.Directory) error {
	data := components.HomeData{
		TableData: components.TableData{
			Countries: dir.All(),
			Paths:     g.paths(),
		},
		Total: dir.Len(),
	}
	page := components.HomePage(data, g.paths().Asset(resources.FilterAsset))
	return g.writePage(ctx, IndexFile, page)
}

// writeCountryPages renders one page per code. The primary record is fetched
// per page; a failure there fails the build. A neighbour failure leaves that
// page's panel empty and is reported in the result.
func (g *Generator) writeCountryPages(ctx context.Context, codes []core.Code) ([]core.Code, error) {
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Concurrency)

	failed := make([]bool, len(codes))
	for i, code := range codes {
		eg.Go(func() error {
			country, err := g.provider.Alpha(egctx, code)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", code, err)
			}

			neighbours, err := g.resolver.Resolve(egctx, country.Borders)
			if err != nil {
				g.logger.Warn("neighbours unavailable, panel left empty", "code", code, "error", err)
				failed[i] = true
				neighbours = nil
			}

			page := components.DetailPage(components.DetailData{
				Country:    country,
				Neighbours: neighbours,
				Paths:      g.paths(),
			})
			return g.writePage(egctx, filepath.Join(CountryDir, string(code), IndexFile), page)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var failures []core.Code
	for i, f := range failed {
		if f {
			failures = append(failures, codes[i])
		}
	}
	return failures, nil
}

func (g *Generator) writePage(ctx context.Context, rel string, page templ.Component) error {
	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", rel, err)
	}

	out := filepath.Join(g.opts.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(out), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// WriteJSON writes any data structure to an indented JSON file.
func WriteJSON(path string, data any) error {
	f, err := os.Create(path) //nolint:gosec // G304: path is from trusted source
	if err != nil {
		return err
	}
	return encodeJSON(f, data)
}

// encodeJSON writes data to w and closes it. A failed close is reported
// when the encode itself succeeded, since buffered bytes may be lost.
func encodeJSON(w io.WriteCloser, data any) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
