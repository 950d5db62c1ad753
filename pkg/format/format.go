// Package format renders amounts for display. Nothing here feeds back into a calculation.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money renders whole currency units with English digit grouping, e.g. 20,000,000.
func Money(d decimal.Decimal) string {
	return MoneyIn(language.English, d)
}

// MoneyIn renders whole currency units with the digit grouping of tag.
func MoneyIn(tag language.Tag, d decimal.Decimal) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%d", d.IntPart())
}

// Percent renders a fractional rate as a percentage, e.g. 0.15 -> 15%.
func Percent(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(2).String() + "%"
}
