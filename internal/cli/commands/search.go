package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/provider"
	"github.com/leapstack-labs/atlas/pkg/core"
)

const (
	searchPrompt      = "atlas> "
	searchHistoryFile = ".atlas_history"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Search countries interactively",
		Long: `Start a prompt that filters the country list by each line you type.

The list is fetched once when the prompt starts. Tab completes country
names and dot-commands; type .help for the command list.`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cmdCtx := NewCommandContext(cmd)

	p, err := cmdCtx.Provider()
	if err != nil {
		return err
	}
	dir, err := cmdCtx.LoadDirectory(ctx, p)
	if err != nil {
		return err
	}

	historyFile := ""
	if cmdCtx.Cfg.ProjectRoot != "" {
		historyFile = filepath.Join(cmdCtx.Cfg.ProjectRoot, searchHistoryFile)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          searchPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newCountryCompleter(dir),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := newSearchSession(dir, p, cmdCtx.Resolver(p), cmd.OutOrStdout(), cmd.ErrOrStderr())

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "atlas search (%d countries)\n", dir.Len())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type a keyword to filter, .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := s.handleLine(ctx, line); quit {
			return nil
		}
	}
}

// searchSession evaluates prompt lines against a loaded directory.
type searchSession struct {
	dir      *directory.Directory
	lookup   core.AlphaLookup
	resolver *borders.Resolver
	field    directory.SortField
	order    directory.Order
	out      io.Writer
	errOut   io.Writer
}

func newSearchSession(dir *directory.Directory, lookup core.AlphaLookup, resolver *borders.Resolver, out, errOut io.Writer) *searchSession {
	return &searchSession{
		dir:      dir,
		lookup:   lookup,
		resolver: resolver,
		order:    directory.Asc,
		out:      out,
		errOut:   errOut,
	}
}

// handleLine runs one prompt line and reports whether the session should end.
func (s *searchSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ".") {
		return s.handleDotCommand(ctx, line)
	}

	countries := directory.Sort(s.dir.Search(line), s.field, s.order)
	_, _ = fmt.Fprintf(s.out, "%d matching\n", len(countries))
	renderCountryTable(s.out, countries, false)
	_, _ = fmt.Fprintln(s.out)
	return false
}

func (s *searchSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printSearchHelp(s.out)

	case ".sort":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .sort <name|population|area|gini|none> [asc|desc]")
			return false
		}
		field := parts[1]
		if field == "none" {
			field = ""
		}
		f, err := directory.ParseSortField(field)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		order := directory.Asc
		if len(parts) > 2 {
			if order, err = directory.ParseOrder(parts[2]); err != nil {
				_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
				return false
			}
		}
		s.field, s.order = f, order
		_, _ = fmt.Fprintf(s.out, "sorting by %s %s\n", sortLabel(f), order)

	case ".show":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .show <code>")
			return false
		}
		if err := s.show(ctx, core.NormalizeCode(parts[1])); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".regions":
		for _, region := range regionNames(s.dir) {
			_, _ = fmt.Fprintln(s.out, region)
		}

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// show prints one country and its neighbours, resolved in parallel.
func (s *searchSession) show(ctx context.Context, code core.Code) error {
	c, ok := s.dir.Lookup(code)
	if !ok {
		var err error
		if c, err = s.lookup.Alpha(ctx, code); err != nil {
			if errors.Is(err, provider.ErrNotFound) {
				return fmt.Errorf("no country with code %s", code)
			}
			return err
		}
	}

	neighbours, err := s.resolver.Resolve(ctx, c.Borders)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(s.out, "%s (%s), %s\n", c.Name, c.Alpha3Code, c.Region)
	if len(neighbours) == 0 {
		_, _ = fmt.Fprintln(s.out, "  no neighbours")
		return nil
	}
	for _, n := range neighbours {
		_, _ = fmt.Fprintf(s.out, "  %s %s\n", n.Alpha3Code, n.Name)
	}
	return nil
}

func sortLabel(f directory.SortField) string {
	if f == directory.SortNone {
		return "provider order"
	}
	return string(f)
}

// regionNames lists the distinct non-empty regions in order of first appearance.
func regionNames(dir *directory.Directory) []string {
	seen := make(map[string]bool)
	var regions []string
	for _, c := range dir.All() {
		if c.Region == "" || seen[c.Region] {
			continue
		}
		seen[c.Region] = true
		regions = append(regions, c.Region)
	}
	return regions
}

func printSearchHelp(w io.Writer) {
	help := `
Commands:
  <keyword>               Filter by name, region or subregion (empty lists all)
  .sort <field> [order]   Sort by name, population, area or gini (none resets)
  .show <code>            Show a country and its neighbours
  .regions                List the regions
  .clear                  Clear the screen
  .quit / .exit           Exit

Tips:
  - Matching is a case-insensitive substring match
  - Use arrow keys to navigate history
  - Tab completion works for country names
`
	_, _ = fmt.Fprintln(w, help)
}

// newCountryCompleter creates a readline completer for country names and dot-commands.
func newCountryCompleter(dir *directory.Directory) *readline.PrefixCompleter {
	codes := dir.Codes()
	codeItems := make([]readline.PrefixCompleterInterface, len(codes))
	for i, code := range codes {
		codeItems[i] = readline.PcItem(string(code))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".sort",
			readline.PcItem("name"),
			readline.PcItem("population"),
			readline.PcItem("area"),
			readline.PcItem("gini"),
			readline.PcItem("none"),
		),
		readline.PcItem(".show", codeItems...),
		readline.PcItem(".regions"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
	}
	for _, name := range dir.Names() {
		items = append(items, readline.PcItem(strings.ToLower(name)))
	}

	return readline.NewPrefixCompleter(items...)
}
