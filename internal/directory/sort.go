package directory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// SortField is a sortable column of the countries table.
type SortField string

// Sortable columns.
const (
	SortNone       SortField = ""
	SortName       SortField = "name"
	SortPopulation SortField = "population"
	SortArea       SortField = "area"
	SortGini       SortField = "gini"
)

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortField validates a column name. The empty string means provider order.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortNone, SortName, SortPopulation, SortArea, SortGini:
		return f, nil
	default:
		return SortNone, fmt.Errorf("unknown sort field %q (want name, population, area or gini)", s)
	}
}

// ParseOrder validates a sort direction, defaulting to ascending.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return Asc, fmt.Errorf("unknown sort order %q (want asc or desc)", s)
	}
}

// Sort returns a sorted copy of countries. SortNone returns the input unchanged.
// Countries without a value for a nullable column always sort last.
func Sort(countries []core.Country, field SortField, order Order) []core.Country {
	if field == SortNone {
		return countries
	}

	sorted := slices.Clone(countries)
	slices.SortStableFunc(sorted, func(a, b core.Country) int {
		switch field {
		case SortName:
			return direction(order, strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)))
		case SortPopulation:
			return direction(order, cmpInt(a.Population, b.Population))
		case SortArea:
			return compareNullable(a.Area, b.Area, order)
		case SortGini:
			return compareNullable(a.Gini, b.Gini, order)
		}
		return 0
	})
	return sorted
}

func direction(order Order, c int) int {
	if order == Desc {
		return -c
	}
	return c
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareNullable(a, b *float64, order Order) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return direction(order, -1)
	case *a > *b:
		return direction(order, 1)
	}
	return 0
}
