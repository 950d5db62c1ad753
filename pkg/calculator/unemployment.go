package calculator

import (
	"fmt"

	"github.com/mcclellann/paycalc/pkg/format"
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/shopspring/decimal"
)

// EstimateUnemployment estimates unemployment insurance benefits. Ineligible inputs
// get zero benefits but still receive the requirement list for display.
//
// The monthly benefit is a share of the average salary capped at a multiple of the
// regional minimum wage. With BenefitFloorAndCap it is also raised to at least the
// regional minimum wage; BenefitCapOnly is the default.
func (c *Calculator) EstimateUnemployment(in models.UnemploymentInput) models.UnemploymentResult {
	u := c.rules.Unemployment
	salary := wholeUnits(in.AverageSalary)

	wage := decimal.NewFromInt(c.rules.RegionWage(in.RegionLevel))
	ceiling := wage.Mul(decimal.NewFromInt(u.CapMultiplier))

	result := models.UnemploymentResult{
		MonthlyBenefit: decimal.Zero,
		TotalBenefit:   decimal.Zero,
		Eligibility:    c.unemploymentEligibility(in.ContributionMonths, in.Age),
		Requirements:   c.unemploymentRequirements(in, wage, ceiling),
	}
	if result.Eligibility != models.Eligible {
		return result
	}

	monthly := decimal.Min(mulRate(salary, rate(u.BenefitRate)), ceiling)
	if in.Policy == models.BenefitFloorAndCap {
		monthly = decimal.Max(monthly, wage)
	}
	duration := c.rules.BenefitDuration(in.ContributionMonths)

	result.MonthlyBenefit = monthly
	result.DurationMonths = duration
	result.TotalBenefit = monthly.Mul(decimal.NewFromInt(int64(duration)))
	return result
}

// unemploymentEligibility never yields models.OtherIssues under the current rules.
func (c *Calculator) unemploymentEligibility(contributionMonths, age int) models.Eligibility {
	u := c.rules.Unemployment
	switch {
	case contributionMonths < u.MinContributionMonths:
		return models.NotEnoughContributions
	case age >= u.MaxAge:
		return models.TooOld
	default:
		return models.Eligible
	}
}

func (c *Calculator) unemploymentRequirements(in models.UnemploymentInput, wage, ceiling decimal.Decimal) []string {
	u := c.rules.Unemployment

	reqs := []string{
		fmt.Sprintf("At least %d months of unemployment insurance contributions (you have %d)", u.MinContributionMonths, in.ContributionMonths),
		fmt.Sprintf("Younger than %d (you are %d)", u.MaxAge, in.Age),
		"Registered with an employment service center within 3 months of leaving the job",
	}

	benefit := fmt.Sprintf("Monthly benefit is %s of average salary, capped at %s", format.Percent(u.BenefitRate), format.Money(ceiling))
	if in.Policy == models.BenefitFloorAndCap {
		benefit += fmt.Sprintf(" and not below %s", format.Money(wage))
	}
	reqs = append(reqs, benefit)

	if in.VocationalTraining {
		reqs = append(reqs, "Vocational training support is available while receiving benefits")
	}
	return reqs
}
