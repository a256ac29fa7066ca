package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/cli/output"
	"github.com/leapstack-labs/atlas/internal/provider"
	"github.com/leapstack-labs/atlas/internal/ui/components"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// ShowOptions holds options for the show command.
type ShowOptions struct {
	Lenient bool
}

// ShowOutput is the JSON shape of the show command.
type ShowOutput struct {
	Country    core.Country   `json:"country"`
	Neighbours []core.Country `json:"neighbours"`
	// Unresolved lists neighbours that failed in lenient mode.
	Unresolved []string `json:"unresolved,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show <code>",
		Short: "Show one country and its neighbours",
		Long: `Show the detail view of a country by its alpha-3 code.

Every neighbouring country is looked up in parallel. By default the command
fails if any neighbour lookup fails; --lenient prints the neighbours that
did resolve and reports the rest.`,
		Example: `  atlas show FRA
  atlas show deu -o markdown
  atlas show ITA --lenient -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, core.NormalizeCode(args[0]), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Lenient, "lenient", false, "Show resolved neighbours even if some lookups fail")

	return cmd
}

func runShow(cmd *cobra.Command, code core.Code, opts *ShowOptions) error {
	ctx := cmd.Context()
	cmdCtx := NewCommandContext(cmd)
	p, err := cmdCtx.Provider()
	if err != nil {
		return err
	}

	country, err := p.Alpha(ctx, code)
	if errors.Is(err, provider.ErrNotFound) {
		return fmt.Errorf("no country with code %s", code)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", code, err)
	}

	out, err := resolveNeighbours(ctx, cmdCtx.Resolver(p), country, opts.Lenient)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	for _, c := range out.Unresolved {
		r.Warning("could not resolve neighbour " + c)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		md, err := detailMarkdown(ctx, out)
		if err != nil {
			return err
		}
		r.Println(md)
		return nil
	default:
		showText(r, out)
		return nil
	}
}

func resolveNeighbours(ctx context.Context, resolver *borders.Resolver, country core.Country, lenient bool) (*ShowOutput, error) {
	out := &ShowOutput{Country: country}
	if !lenient {
		neighbours, err := resolver.Resolve(ctx, country.Borders)
		if err != nil {
			return nil, err
		}
		out.Neighbours = neighbours
		return out, nil
	}

	results := resolver.ResolveEach(ctx, country.Borders)
	for _, res := range results {
		if res.Err != nil {
			out.Unresolved = append(out.Unresolved, string(res.Code))
		}
	}
	out.Neighbours = borders.Countries(results)
	return out, nil
}

// detailMarkdown renders the detail view to HTML and converts it to markdown.
func detailMarkdown(ctx context.Context, out *ShowOutput) (string, error) {
	var buf bytes.Buffer
	data := components.DetailData{
		Country:    out.Country,
		Neighbours: out.Neighbours,
		Paths:      components.Paths{Static: true},
	}
	if err := components.DetailContent(data).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to render detail: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert detail to markdown: %w", err)
	}
	return md, nil
}

func showText(r *output.Renderer, out *ShowOutput) {
	c := out.Country
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("%s (%s)", c.Name, c.Alpha3Code))
	r.Muted(c.Region)
	r.Println("")
	r.KeyValue("Population", components.FormatInt(c.Population))
	area := components.FormatArea(c.Area)
	if c.Area != nil {
		area += " km²"
	}
	r.KeyValue("Area", area)
	r.KeyValue("Capital", c.Capital)
	r.KeyValue("Subregion", c.Subregion)
	r.KeyValue("Languages", components.JoinNames(c.LanguageNames()))
	r.KeyValue("Currencies", components.JoinNames(c.CurrencyNames()))
	r.KeyValue("Native name", c.NativeName)
	r.KeyValue("Gini", components.FormatGini(c.Gini))
	r.Println("")

	r.Header(2, "Neighbouring Countries")
	if len(out.Neighbours) == 0 {
		r.Muted("none")
		return
	}
	names := make([]string, len(out.Neighbours))
	for i, n := range out.Neighbours {
		names[i] = fmt.Sprintf("%s %s", styles.Accent.Render(string(n.Alpha3Code)), n.Name)
	}
	r.Println(strings.Join(names, "\n"))
}
