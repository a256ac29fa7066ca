package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/provider"
	"github.com/leapstack-labs/atlas/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the live country browser",
		Long: `Start a local web server rendering the country directory.

The server provides:
- A country table filtered as you type, with sortable columns
- The search keyword remembered per browser
- Detail pages whose neighbour panel loads in the background
- Live reload when the file provider's snapshot changes`,
		Example: `  # Start on the default port
  atlas serve

  # Serve an offline snapshot and reload when it changes
  atlas serve --provider file --snapshot dist/data/countries.json

  # Start without opening a browser
  atlas serve --port 3000 --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Bool("watch", true, "Reload when the snapshot file changes (file provider only)")
	cmd.Flags().Bool("dev", false, "Mount the hot reload endpoints")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	ctx := cmd.Context()
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	p, err := cmdCtx.Provider()
	if err != nil {
		return err
	}

	snapshot, err := directory.Load(ctx, p)
	if err != nil {
		return err
	}
	n := snapshot.Current().Len()
	cmdCtx.Logger.Debug("directory loaded", "countries", n)

	var watchFile string
	if cfg.UI.Watch && cfg.Provider.Type == provider.TypeFile {
		watchFile = cfg.Provider.File
	}

	server := ui.NewServer(ui.Config{
		Provider:       p,
		Snapshot:       snapshot,
		Port:           cfg.UI.Port,
		SessionSecret:  cfg.UI.SessionSecret,
		WatchFile:      watchFile,
		MaxConcurrency: cfg.Provider.MaxConcurrency,
		SearchDebounce: cfg.UI.SearchDebounce,
		Dev:            cfg.UI.Dev,
		Logger:         cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.UI.Port)
	if cfg.UI.AutoOpen && !opts.NoBrowser {
		go openBrowser(url)
	}

	r.Printf("Serving %d countries on %s\n", n, url)
	r.Println("Press Ctrl+C to stop")

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
