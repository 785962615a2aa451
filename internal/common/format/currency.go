// Package format renders money for the dashboard.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency renders d as whole dollars with thousands separators, e.g.
// "$1,234". Halves round to even. The sign follows the dollar symbol
// ("$-150").
func Currency(d decimal.Decimal) string {
	return "$" + printer.Sprintf("%d", d.RoundBank(0).IntPart())
}

// Amount renders d with two decimals and thousands separators, without a
// currency symbol.
func Amount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}
