package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/atlas/internal/cli/config"
)

// keyDescriptions documents each configuration key. Keys missing here are
// reported so the reference cannot silently fall behind config.Config.
var keyDescriptions = map[string]string{
	"provider.type":            "Country data source: restcountries or file",
	"provider.base_url":        "Base URL of the REST Countries API",
	"provider.file":            "JSON snapshot read by the file provider, relative to the project root",
	"provider.timeout":         "Per-request timeout; 0 disables it",
	"provider.max_concurrency": "Upper bound on parallel neighbour lookups; 0 means unbounded",
	"provider.fields":          "Fields requested from the API",
	"build.output_dir":         "Directory the static site is written to",
	"build.concurrency":        "Number of pages rendered in parallel",
	"build.minify":             "Minify the bundled CSS and JavaScript",
	"build.check_links":        "Fail the build on links to pages that were not generated",
	"build.base_path":          "Path prefix when the site is hosted below the domain root",
	"ui.port":                  "Port of the live server",
	"ui.auto_open":             "Open the browser when the server starts",
	"ui.watch":                 "Reload the snapshot when the file provider's file changes",
	"ui.session_secret":        "Secret for the cookie that remembers the search keyword",
	"ui.search_debounce":       "Delay before a keystroke triggers a search",
	"ui.dev":                   "Serve assets from disk and enable hot reload",
	"output":                   "Output format: auto, text, markdown or json",
	"verbose":                  "Enable debug logging",
	"log_format":               "Log format: text or json",
}

type configKey struct {
	Key     string
	Default string
}

// generateConfigDocs writes configuration.md from the defaults of config.Config.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var doc yaml.Node
	if err := doc.Encode(config.Default()); err != nil {
		return fmt.Errorf("failed to encode defaults: %w", err)
	}
	keys := flattenKeys(&doc, "")

	// omitempty keys have no default to encode
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k.Key] = true
	}
	var extra []string
	for key := range keyDescriptions {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	for _, key := range extra {
		keys = append(keys, configKey{Key: key})
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "atlas configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("atlas reads atlas.yaml (or atlas.yml) from the nearest directory at or above the working directory. " +
		"Environment variables override the file and command-line flags override both.")

	var rows [][]string
	for _, k := range keys {
		desc, ok := keyDescriptions[k.Key]
		if !ok {
			log.Printf("  WARNING: no description for %s", k.Key)
		}
		def := k.Default
		if def != "" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode(k.Key), InlineCode(envName(k.Key)), def, cleanDescription(desc)})
	}
	w.Table([]string{"Key", "Environment", "Default", "Description"}, rows)

	out, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode defaults: %w", err)
	}
	w.Header(2, "Defaults")
	w.CodeBlock("yaml", string(out))

	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}

// flattenKeys lists the scalar and sequence leaves of a mapping node as dotted keys.
func flattenKeys(n *yaml.Node, prefix string) []configKey {
	var keys []configKey
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		val := n.Content[i+1]
		switch val.Kind {
		case yaml.MappingNode:
			keys = append(keys, flattenKeys(val, key)...)
		case yaml.SequenceNode:
			items := make([]string, len(val.Content))
			for j, item := range val.Content {
				items[j] = item.Value
			}
			keys = append(keys, configKey{Key: key, Default: strings.Join(items, ",")})
		default:
			keys = append(keys, configKey{Key: key, Default: val.Value})
		}
	}
	return keys
}

func envName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
