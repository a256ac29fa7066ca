package components

import (
	"encoding/json"

	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/pkg/core"
)

// SearchPlaceholder is the hint shown in the search box.
const SearchPlaceholder = "Filter by Name, Region or SubRegion"

// DefaultDebounce applies when HomeData.Debounce is empty.
const DefaultDebounce = "200ms"

// SortState is the active column ordering of the table.
type SortState struct {
	Field directory.SortField
	Order directory.Order
}

// TableData holds everything the countries table renders.
type TableData struct {
	Countries []core.Country
	Keyword   string
	Sort      SortState
	Paths     Paths
	Live      bool
}

// HomeData holds the listing page.
type HomeData struct {
	TableData
	// Total is the size of the full, unfiltered list.
	Total int
	// Debounce is the datastar debounce applied to search keystrokes, e.g. "200ms".
	Debounce string
}

// HomeSignals is the datastar signal set of the listing page.
type HomeSignals struct {
	Keyword string `json:"keyword"`
	OrderBy string `json:"orderBy"`
	Order   string `json:"order"`
}

var sortColumns = []struct {
	field directory.SortField
	label string
}{
	{directory.SortName, "Name"},
	{directory.SortPopulation, "Population"},
	{directory.SortArea, "Area (km²)"},
	{directory.SortGini, "Gini"},
}

func homeSignals(data HomeData) string {
	signals, _ := json.Marshal(HomeSignals{
		Keyword: data.Keyword,
		OrderBy: string(data.Sort.Field),
		Order:   string(data.Sort.Order),
	})
	return string(signals)
}

// debounceAttr names the datastar input handler, e.g. data-on:input__debounce.200ms.
func debounceAttr(debounce string) string {
	if debounce == "" {
		debounce = DefaultDebounce
	}
	return "data-on:input__debounce." + debounce
}

// sortToggle flips the order when field is already active, else sorts ascending by field.
func sortToggle(field directory.SortField) string {
	f := string(field)
	return "$order = ($orderBy === '" + f + "' && $order === 'asc') ? 'desc' : 'asc'; $orderBy = '" + f + "'; @get('/countries/search')"
}

func sortArrow(order directory.Order) string {
	if order == directory.Desc {
		return "▼"
	}
	return "▲"
}
