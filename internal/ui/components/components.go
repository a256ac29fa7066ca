// Package components provides the page and fragment components shared by the
// UI server and the static site build.
//
// The markup lives in .templ files; the *_templ.go files next to them are
// produced by `templ generate` and committed. Fragments that the server
// patches over SSE carry stable element ids (see the *ID constants).
package components

//go:generate templ generate

// Element ids targeted by datastar patches.
const (
	TableID   = "countries-table"
	BordersID = "borders"
	UpdatesID = "updates"
)

// DatastarScript is the datastar client bundle loaded by live pages.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// SiteName is appended to every page title.
const SiteName = "Atlas"

// LayoutOptions configures the page shell.
type LayoutOptions struct {
	Paths Paths
	// Live loads the datastar client.
	Live bool
	// Scripts are extra script URLs appended to the body.
	Scripts []string
}
