package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/atlas/internal/cli"
	"github.com/leapstack-labs/atlas/internal/cli/config"
)

// flagDoc is one row of an options table.
type flagDoc struct {
	Name, Short, Default, Usage string
}

// commandDoc is everything a command page shows.
type commandDoc struct {
	Name        string
	Short       string
	Description string
	Usage       string
	Aliases     []string
	Subcommands [][2]string
	Local       []flagDoc
	Inherited   []flagDoc
	Example     string
}

// generateCLIDocs writes index.md plus one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range documented(root) {
		pages[cmd.Name()+".md"] = commandPage(describe(cmd))
	}

	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), body, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for atlas")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("atlas lists, searches and shows countries from the REST Countries API or a local snapshot, " +
		"builds a static site from them and serves a live version.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/atlas/cmd/atlas@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(root) {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name()),
			cleanDescription(cmd.Short),
		})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	flagTable(w, collectFlags(root.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every configuration key can be set with an %s variable: %s sets %s.",
		InlineCode(config.EnvPrefix), InlineCode(config.EnvPrefix+"PROVIDER_BASE_URL"), InlineCode("provider.base_url")))
	w.Paragraph("Flags take precedence over environment variables, which take precedence over atlas.yaml.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error (check stderr for details)"},
	})
	return w.Bytes()
}

// describe extracts the documented parts of cmd.
func describe(cmd *cobra.Command) commandDoc {
	d := commandDoc{
		Name:        cmd.Name(),
		Short:       cmd.Short,
		Description: cmd.Long,
		Aliases:     cmd.Aliases,
		Example:     dedent(cmd.Example),
	}
	if d.Description == "" {
		d.Description = cmd.Short
	}

	d.Usage = cmd.UseLine()
	if cmd.HasSubCommands() {
		d.Usage = fmt.Sprintf("atlas %s <subcommand> [options]", cmd.Name())
	} else if !strings.HasPrefix(d.Usage, "atlas") {
		d.Usage = "atlas " + d.Usage
	}

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			d.Subcommands = append(d.Subcommands, [2]string{sub.Name(), sub.Short})
		}
	}
	if cmd.HasLocalFlags() {
		d.Local = collectFlags(cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		d.Inherited = collectFlags(cmd.InheritedFlags())
	}
	return d
}

func commandPage(d commandDoc) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(d.Name, d.Short)
	w.GeneratedMarker()

	w.Header(1, d.Name)
	w.Paragraph(d.Description)

	w.Header(2, "Usage")
	w.CodeBlock("bash", d.Usage)

	if len(d.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(d.Aliases))
		for i, a := range d.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.BulletList(aliases)
	}

	if len(d.Subcommands) > 0 {
		w.Header(2, "Subcommands")
		rows := make([][]string, len(d.Subcommands))
		for i, s := range d.Subcommands {
			rows[i] = []string{InlineCode(s[0]), cleanDescription(s[1])}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if len(d.Local) > 0 {
		w.Header(2, "Options")
		flagTable(w, d.Local)
	}
	if len(d.Inherited) > 0 {
		w.Header(2, "Global Options")
		flagTable(w, d.Inherited)
	}

	if d.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", d.Example)
	}
	return w.Bytes()
}

// documented returns the visible subcommands of root.
func documented(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func collectFlags(flags *pflag.FlagSet) []flagDoc {
	var out []flagDoc
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		d := flagDoc{Name: "--" + f.Name, Default: f.DefValue, Usage: f.Usage}
		if f.Shorthand != "" {
			d.Short = "-" + f.Shorthand
		}
		// strings and durations read better as code; bools and numbers stay bare
		if t := f.Value.Type(); d.Default != "" && (t == "string" || t == "duration") {
			d.Default = InlineCode(d.Default)
		}
		out = append(out, d)
	})
	return out
}

func flagTable(w *MarkdownWriter, flags []flagDoc) {
	rows := make([][]string, len(flags))
	for i, f := range flags {
		rows[i] = []string{InlineCode(f.Name), f.Short, f.Default, cleanDescription(f.Usage)}
	}
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.TrimSpace(s)
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
