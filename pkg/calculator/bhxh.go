package calculator

import (
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/shopspring/decimal"
)

// EstimateSocialInsurance estimates the lump-sum social insurance (BHXH) amount
// accrued over the contribution months. The single contribution period in the result
// spans the configured illustrative years; it is not derived from a real history.
func (c *Calculator) EstimateSocialInsurance(in models.SocialInsuranceInput) models.SocialInsuranceResult {
	si := c.rules.SocialInsurance
	salary := wholeUnits(in.AverageSalary)

	months := in.ContributionMonths
	if months < 0 {
		months = 0
	}
	m := decimal.NewFromInt(int64(months))

	mandatory := mulRate(salary, rate(si.MandatoryRate)).Mul(m)
	voluntary := mulRate(salary, rate(si.VoluntaryRate)).Mul(m)

	var base decimal.Decimal
	switch in.InsuranceType {
	case models.InsuranceVoluntary:
		base = voluntary
	case models.InsuranceBoth:
		share := rate(si.MandatoryShare)
		base = mandatory.Mul(share).Add(voluntary.Mul(decimal.NewFromInt(1).Sub(share)))
	default:
		base = mandatory
	}

	total := mulRate(base, rate(c.rules.RegionMultiplier(in.RegionLevel)))

	return models.SocialInsuranceResult{
		TotalAmount:        total,
		AverageSalary:      salary,
		ContributionMonths: months,
		Periods: []models.ContributionPeriod{
			{
				ID:            1,
				StartYear:     si.PeriodStartYear,
				EndYear:       si.PeriodEndYear,
				Months:        months,
				AverageSalary: salary,
			},
		},
	}
}
