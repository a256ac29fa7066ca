// Package directory holds the in-memory country list behind the listing page
// and the keyword filter over it.
package directory

import (
	"strings"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// Filter returns the countries whose lowercased name, region or subregion
// contains the lowercased keyword. An empty keyword keeps every country.
// Relative order is preserved and the input is never modified.
func Filter(countries []core.Country, keyword string) []core.Country {
	keyword = strings.ToLower(keyword)

	result := make([]core.Country, 0, len(countries))
	for _, c := range countries {
		if Matches(c, keyword) {
			result = append(result, c)
		}
	}
	return result
}

// Matches reports whether c is retained by Filter for an already lowercased keyword.
func Matches(c core.Country, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), keyword) ||
		strings.Contains(strings.ToLower(c.Region), keyword) ||
		strings.Contains(strings.ToLower(c.Subregion), keyword)
}

// Directory is an immutable snapshot of the full country list.
type Directory struct {
	countries []core.Country
	byCode    map[core.Code]int
}

// New builds a Directory over countries. The slice is not copied; callers hand
// over ownership and must not modify it afterwards.
func New(countries []core.Country) *Directory {
	byCode := make(map[core.Code]int, len(countries))
	for i, c := range countries {
		code := core.NormalizeCode(string(c.Alpha3Code))
		if _, dup := byCode[code]; !dup {
			byCode[code] = i
		}
	}
	return &Directory{
		countries: countries,
		byCode:    byCode,
	}
}

// All returns the full list in provider order.
func (d *Directory) All() []core.Country {
	return d.countries
}

// Len returns the number of countries in the snapshot.
func (d *Directory) Len() int {
	return len(d.countries)
}

// Search filters the snapshot by keyword.
func (d *Directory) Search(keyword string) []core.Country {
	return Filter(d.countries, keyword)
}

// Lookup returns the country with the given code.
func (d *Directory) Lookup(code core.Code) (core.Country, bool) {
	i, ok := d.byCode[core.NormalizeCode(string(code))]
	if !ok {
		return core.Country{}, false
	}
	return d.countries[i], true
}

// Codes enumerates every routable detail key in provider order.
func (d *Directory) Codes() []core.Code {
	codes := make([]core.Code, 0, len(d.countries))
	for _, c := range d.countries {
		codes = append(codes, c.Alpha3Code)
	}
	return codes
}

// Names returns every display name in provider order.
func (d *Directory) Names() []string {
	names := make([]string, 0, len(d.countries))
	for _, c := range d.countries {
		names = append(names, c.Name)
	}
	return names
}
