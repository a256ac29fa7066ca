package components

import "github.com/leapstack-labs/atlas/pkg/core"

// DetailData holds one country's detail page.
type DetailData struct {
	Country core.Country
	// Neighbours are the resolved border countries. Live pages leave it empty
	// and load the panel over SSE.
	Neighbours []core.Country
	Paths      Paths
	Live       bool
}

func bordersURL(code core.Code) string {
	return "@get('/country/" + string(code) + "/borders')"
}
