package components

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is rendered for absent measurements.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatInt formats n with grouped thousands, e.g. 67391582 -> "67,391,582".
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatArea formats an area in km², or NotAvailable.
func FormatArea(area *float64) string {
	if area == nil {
		return NotAvailable
	}
	return printer.Sprintf("%.0f", *area)
}

// FormatGini formats a Gini coefficient as "32.4 %", or NotAvailable.
func FormatGini(gini *float64) string {
	if gini == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*gini, 'f', -1, 64) + " %"
}

// JoinNames joins names the way the detail panel lists them.
func JoinNames(names []string) string {
	return strings.Join(names, ",")
}

// SortValue returns the raw value a client-side sorter orders by.
func SortValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
