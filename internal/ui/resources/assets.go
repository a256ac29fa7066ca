// Package resources provides the static assets shared by the UI server and the
// static site build.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Asset names.
const (
	StylesheetAsset = "atlas.css"
	FilterAsset     = "filter.js"
)

// Assets lists every file under static/ that a build copies.
var Assets = []string{StylesheetAsset, FilterAsset}

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}
