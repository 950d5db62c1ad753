package calculator

import (
	"fmt"

	"github.com/mcclellann/paycalc/pkg/format"
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/shopspring/decimal"
)

// ApplyBrackets taxes income progressively over ascending brackets and returns the
// total tax with one breakdown entry per bracket that received income. The tax of
// each bracket is truncated to whole units, so the entries always sum to the total.
func ApplyBrackets(income decimal.Decimal, brackets []models.TaxBracket) (decimal.Decimal, []models.TaxBreakdownEntry) {
	total := decimal.Zero
	breakdown := []models.TaxBreakdownEntry{}

	remaining := nonNegative(income)
	lower := decimal.Zero

	for i, b := range brackets {
		if !remaining.IsPositive() {
			break
		}

		amount := remaining
		var upper decimal.Decimal
		if !b.Unbounded() {
			upper = decimal.NewFromInt(b.UpperBound)
			amount = decimal.Min(remaining, upper.Sub(lower))
		}
		if !amount.IsPositive() {
			lower = upper
			continue
		}

		tax := mulRate(amount, rate(b.Rate))
		total = total.Add(tax)
		remaining = remaining.Sub(amount)

		breakdown = append(breakdown, models.TaxBreakdownEntry{
			BracketIndex:  i + 1,
			Rate:          b.Rate,
			TaxableAmount: amount,
			Tax:           tax,
			Description:   describeBracket(i+1, b, lower, upper),
		})
		lower = upper
	}

	return total, breakdown
}

func describeBracket(index int, b models.TaxBracket, lower, upper decimal.Decimal) string {
	if b.Unbounded() {
		return fmt.Sprintf("Bracket %d: %s on income above %s", index, format.Percent(b.Rate), format.Money(lower))
	}
	return fmt.Sprintf("Bracket %d: %s on income from %s to %s", index, format.Percent(b.Rate), format.Money(lower), format.Money(upper))
}
