package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/atlas/internal/cli/output"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/ui/components"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Filter string
	Sort   string
	Order  string
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List countries, optionally filtered",
		Long: `List every country from the provider.

The filter is a case-insensitive substring match against the name, region
and subregion of each country. Results keep the provider's order unless
--sort is given.`,
		Example: `  # List every country
  atlas list

  # Countries whose name, region or subregion contains "europe"
  atlas list --filter europe

  # Most populous first, as JSON
  atlas list --sort population --order desc -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "Keyword to filter by")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort by name, population, area or gini")
	cmd.Flags().StringVar(&opts.Order, "order", string(directory.Asc), "Sort order (asc|desc)")

	_ = cmd.RegisterFlagCompletionFunc("sort", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"name", "population", "area", "gini"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("order", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"asc", "desc"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	field, err := directory.ParseSortField(opts.Sort)
	if err != nil {
		return err
	}
	order, err := directory.ParseOrder(opts.Order)
	if err != nil {
		return err
	}

	cmdCtx := NewCommandContext(cmd)
	p, err := cmdCtx.Provider()
	if err != nil {
		return err
	}
	dir, err := cmdCtx.LoadDirectory(cmd.Context(), p)
	if err != nil {
		return err
	}

	countries := directory.Sort(dir.Search(opts.Filter), field, order)
	r := cmdCtx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(countries)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Countries (%d of %d)", len(countries), dir.Len())))
		r.Println("")
		renderCountryTable(r.Writer(), countries, true)
	default:
		r.Header(1, fmt.Sprintf("Countries (%d of %d)", len(countries), dir.Len()))
		renderCountryTable(r.Writer(), countries, false)
	}
	return nil
}

// renderCountryTable writes the country table as a box-drawn table or markdown.
func renderCountryTable(w io.Writer, countries []core.Country, markdown bool) {
	if len(countries) == 0 {
		_, _ = fmt.Fprintln(w, "(no matching countries)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Code", "Name", "Region", "Population", "Area (km²)", "Gini"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Population", Align: text.AlignRight},
		{Name: "Area (km²)", Align: text.AlignRight},
		{Name: "Gini", Align: text.AlignRight},
	})

	for _, c := range countries {
		t.AppendRow(table.Row{
			c.Alpha3Code,
			c.Name,
			c.Region,
			components.FormatInt(c.Population),
			components.FormatArea(c.Area),
			components.FormatGini(c.Gini),
		})
	}

	if markdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
