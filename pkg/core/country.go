package core

import "strings"

// Code is an ISO 3166-1 alpha-3 country code (e.g., "FRA").
// It is the only key used to look up a country.
type Code string

// NormalizeCode upper-cases and trims a user supplied code.
func NormalizeCode(s string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(s)))
}

// String implements fmt.Stringer.
func (c Code) String() string { return string(c) }

// Language is a spoken language of a country.
type Language struct {
	Name       string `json:"name"`
	NativeName string `json:"nativeName,omitempty"`
}

// Currency is a currency in use in a country.
type Currency struct {
	Code   string `json:"code,omitempty"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
}

// Country is a country record as served by the country-data provider.
// Records are read-only once fetched; views derive from them and never mutate them.
type Country struct {
	// Name is the display name
	Name string `json:"name"`
	// Alpha3Code is the stable detail-page key, unique across the full set
	Alpha3Code Code `json:"alpha3Code"`
	// Region and Subregion are free-text classifications (case varies)
	Region    string `json:"region"`
	Subregion string `json:"subregion"`
	// Population is the number of inhabitants
	Population int64 `json:"population"`
	// Area is the land area in km², absent for some territories
	Area *float64 `json:"area,omitempty"`
	// Gini is the Gini coefficient in percent, absent for many countries
	Gini       *float64   `json:"gini,omitempty"`
	Capital    string     `json:"capital"`
	NativeName string     `json:"nativeName"`
	Flag       string     `json:"flag"`
	Languages  []Language `json:"languages"`
	Currencies []Currency `json:"currencies"`
	// Borders lists the alpha-3 codes of adjacent countries, possibly empty
	Borders []Code `json:"borders"`
}

// LanguageNames returns the language names in provider order.
func (c Country) LanguageNames() []string {
	names := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		names = append(names, l.Name)
	}
	return names
}

// CurrencyNames returns the currency names in provider order.
func (c Country) CurrencyNames() []string {
	names := make([]string, 0, len(c.Currencies))
	for _, cur := range c.Currencies {
		names = append(names, cur.Name)
	}
	return names
}
