// Package format renders amounts the way every surface of the dashboard
// shows them: whole-dollar currency with thousands separators and one
// decimal percentages.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency formats d as "$1,235", rounding to whole units.
func Currency(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return printer.Sprintf("-$%d", -n)
	}
	return printer.Sprintf("$%d", n)
}

// Percent formats d as "40.0%".
func Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// NullPercent formats a margin, or "n/a" when it does not apply.
func NullPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return Percent(d.Decimal)
}

// Int formats n with thousands separators.
func Int(n int) string {
	return printer.Sprintf("%d", n)
}

// Compact formats v as a short currency label for chart axes: "$950",
// "$12.5K", "$3.1M".
func Compact(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch {
	case v >= 1e9:
		return printer.Sprintf("%s$%.1fB", sign, v/1e9)
	case v >= 1e6:
		return printer.Sprintf("%s$%.1fM", sign, v/1e6)
	case v >= 1e3:
		return printer.Sprintf("%s$%.1fK", sign, v/1e3)
	default:
		return printer.Sprintf("%s$%.0f", sign, v)
	}
}
