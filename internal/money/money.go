// Package money renders amounts for people in the shop's locale.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter formats for tag, e.g. language.Spanish renders 1234567.5 as
// "$ 1.234.567,50".
func NewFormatter(tag language.Tag, symbol string) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Spanish is the default formatter used by messages, exports and the
// terminal client.
func Spanish() *Formatter {
	return NewFormatter(language.Spanish, "$")
}

func (f *Formatter) Format(d decimal.Decimal) string {
	amount := f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
	if f.symbol == "" {
		return amount
	}

	return f.symbol + " " + amount
}

// Plain renders d with two decimals and no grouping, for machine-readable
// columns.
func Plain(d decimal.Decimal) string {
	return d.StringFixed(2)
}
