package site

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/leapstack-labs/atlas/internal/ui/resources"
)

// writeAssets copies the shared static assets into the output, minifying them
// when enabled.
func (g *Generator) writeAssets() error {
	staticDir := filepath.Join(g.opts.OutputDir, StaticDir)
	if err := os.MkdirAll(staticDir, 0750); err != nil {
		return err
	}

	for _, name := range resources.Assets {
		content, err := fs.ReadFile(resources.FS(), name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if g.opts.Minify {
			content, err = Minify(name, content)
			if err != nil {
				return err
			}
		}
		if err := os.WriteFile(filepath.Join(staticDir, name), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// Minify compresses a .js or .css asset with esbuild. Other files are returned as is.
func Minify(name string, content []byte) ([]byte, error) {
	var loader api.Loader
	switch filepath.Ext(name) {
	case ".js":
		loader = api.LoaderJS
	case ".css":
		loader = api.LoaderCSS
	default:
		return content, nil
	}

	result := api.Transform(string(content), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        name,
		Target:            api.ES2020,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LogLevel:          api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		var msg strings.Builder
		for _, err := range result.Errors {
			if err.Location != nil {
				fmt.Fprintf(&msg, "%s:%d:%d: ", err.Location.File, err.Location.Line, err.Location.Column)
			}
			msg.WriteString(err.Text)
			msg.WriteString("\n")
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", msg.String())
	}

	return result.Code, nil
}
