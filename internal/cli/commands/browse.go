package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/atlas/internal/tui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse countries in a terminal UI",
		Long: `Open a full-screen browser over the country list.

Typing filters the table on every keystroke. Enter opens the selected
country and resolves its neighbours in the background; esc goes back.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
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

	return tui.Run(ctx, dir, cmdCtx.Resolver(p))
}
