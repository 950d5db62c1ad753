package calculator

import (
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/shopspring/decimal"
)

// CalculateTax computes monthly personal income tax. A zero personal deduction falls
// back to the rules default and a nil insurance deduction is derived from the
// statutory rates.
func (c *Calculator) CalculateTax(in models.TaxInput) models.TaxCalculationResult {
	gross := wholeUnits(in.GrossSalary)

	personal := wholeUnits(in.PersonalDeduction)
	if personal.IsZero() {
		personal = decimal.NewFromInt(c.rules.PersonalDeduction)
	}

	var insurance decimal.Decimal
	if in.InsuranceDeduction != nil {
		insurance = wholeUnits(*in.InsuranceDeduction)
	} else {
		insurance = mulRate(gross, c.insuranceRate())
	}

	dependent := c.dependentDeduction(in.Dependents)
	other := wholeUnits(in.OtherDeductions)

	taxable := nonNegative(gross.Sub(personal).Sub(dependent).Sub(insurance).Sub(other))
	tax, breakdown := ApplyBrackets(taxable, c.rules.Brackets)

	return models.TaxCalculationResult{
		GrossSalary:        gross,
		PersonalDeduction:  personal,
		DependentDeduction: dependent,
		InsuranceDeduction: insurance,
		OtherDeductions:    other,
		TaxableIncome:      taxable,
		Tax:                tax,
		NetSalary:          gross.Sub(insurance).Sub(tax),
		Breakdown:          breakdown,
	}
}

// insuranceRate sums the statutory rates in decimal so 8% + 1.5% + 1% is exactly 10.5%.
func (c *Calculator) insuranceRate() decimal.Decimal {
	r := c.rules.Insurance
	return rate(r.Social).Add(rate(r.Health)).Add(rate(r.Unemployment))
}

func (c *Calculator) dependentDeduction(dependents int) decimal.Decimal {
	if dependents < 0 {
		dependents = 0
	}
	return decimal.NewFromInt(int64(dependents)).Mul(decimal.NewFromInt(c.rules.DependentDeduction))
}
