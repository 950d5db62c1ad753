package calculator

import (
	"math"

	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/shopspring/decimal"
)

const monthsPerYear = 12

// ProjectCompoundInterest simulates year-by-year growth of a principal with monthly
// contributions. The running amount stays a float for the whole horizon and is only
// truncated to whole units when a year boundary is recorded; truncating every month
// gives different figures.
//
// Years are capped at the rules' projection horizon. A running amount that overflows
// saturates at the largest float and stops growing.
func (c *Calculator) ProjectCompoundInterest(in models.CompoundInterestInput) models.CompoundInterestResult {
	principal := wholeUnits(in.Principal)
	contribution := wholeUnits(in.MonthlyContribution)

	years := in.Years
	if years < 0 {
		years = 0
	}
	if limit := c.rules.Projection.MaxYears; years > limit {
		years = limit
	}
	frequency := in.CompoundFrequency
	if frequency <= 0 {
		frequency = monthsPerYear
	}

	growth := 1 + in.AnnualRate/100/float64(frequency)
	monthly := contribution.InexactFloat64()
	yearlyContribution := contribution.Mul(decimal.NewFromInt(monthsPerYear))

	amount := principal.InexactFloat64()
	schedule := make([]models.YearlyProjection, 0, years)

	for year := 1; year <= years; year++ {
		start := truncFloat(amount)
		for m := 0; m < monthsPerYear; m++ {
			amount = saturate(saturate(amount+monthly) * growth)
		}
		end := truncFloat(amount)

		schedule = append(schedule, models.YearlyProjection{
			Year:         year,
			StartAmount:  start,
			Contribution: yearlyContribution,
			Interest:     end.Sub(start).Sub(yearlyContribution),
			EndAmount:    end,
		})
	}

	final := truncFloat(amount)
	totalContributions := yearlyContribution.Mul(decimal.NewFromInt(int64(years)))
	invested := principal.Add(totalContributions)

	var effective float64
	if principal.IsPositive() && years > 0 {
		effective = (final.InexactFloat64()/principal.InexactFloat64() - 1) / float64(years) * 100
	}

	return models.CompoundInterestResult{
		Principal:          principal,
		TotalContributions: totalContributions,
		TotalInvested:      invested,
		FinalAmount:        final,
		TotalInterest:      final.Sub(invested),
		YearlyBreakdown:    schedule,
		EffectiveRate:      effective,
	}
}

// saturate clamps an overflowed amount to the largest finite float of the same sign.
// NaN only comes from a zero balance times an infinite growth factor and maps to zero.
func saturate(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

func truncFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(math.Trunc(saturate(f)))
}
