package components

import (
	"strings"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// Paths builds links for either the live server or a static build.
type Paths struct {
	// Base is prepended to every link, e.g. "/atlas" when hosted under a subpath.
	Base string
	// Static selects directory-style links ("/country/FRA/") that resolve to index.html.
	Static bool
}

// LivePaths is the link set used by the UI server.
var LivePaths = Paths{}

func (p Paths) base() string {
	return strings.TrimRight(p.Base, "/")
}

// Home links to the listing page.
func (p Paths) Home() string {
	return p.base() + "/"
}

// Country links to a detail page.
func (p Paths) Country(code core.Code) string {
	if p.Static {
		return p.base() + "/country/" + string(code) + "/"
	}
	return p.base() + "/country/" + string(code)
}

// Asset links to a static asset.
func (p Paths) Asset(name string) string {
	return p.base() + "/static/" + name
}
