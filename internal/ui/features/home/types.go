package home

import "github.com/leapstack-labs/atlas/internal/ui/components"

// Session keys.
const (
	sessionName = "atlas"
	keywordKey  = "keyword"
)

// SearchSignals are the datastar signals sent by the search box and the sort buttons.
type SearchSignals = components.HomeSignals
