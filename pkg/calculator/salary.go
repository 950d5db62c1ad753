package calculator

import (
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CalculateSalary converts between gross and net monthly salary in the direction
// requested by the input. Anything other than NetToGross is treated as gross-to-net.
func (c *Calculator) CalculateSalary(in models.SalaryInput) models.SalaryCalculationResult {
	if in.Direction == models.NetToGross {
		return c.NetToGross(in.Amount, in.Dependents, in.IncludeUnemployment)
	}
	return c.GrossToNet(in.Amount, in.Dependents, in.IncludeUnemployment)
}

// GrossToNet computes take-home pay: net = gross - insurance - tax.
func (c *Calculator) GrossToNet(gross decimal.Decimal, dependents int, includeUnemployment bool) models.SalaryCalculationResult {
	gross = wholeUnits(gross)
	ins := c.rules.Insurance

	social := mulRate(gross, rate(ins.Social))
	health := mulRate(gross, rate(ins.Health))
	unemployment := decimal.Zero
	if includeUnemployment {
		unemployment = mulRate(gross, rate(ins.Unemployment))
	}
	insurance := social.Add(health).Add(unemployment)

	personal := decimal.NewFromInt(c.rules.PersonalDeduction)
	dependent := c.dependentDeduction(dependents)

	taxable := nonNegative(gross.Sub(insurance).Sub(personal).Sub(dependent))
	tax, brackets := ApplyBrackets(taxable, c.rules.Brackets)

	return models.SalaryCalculationResult{
		GrossSalary:           gross,
		NetSalary:             gross.Sub(insurance).Sub(tax),
		SocialInsurance:       social,
		HealthInsurance:       health,
		UnemploymentInsurance: unemployment,
		Tax:                   tax,
		TotalDeductions:       insurance.Add(tax),
		Breakdown: models.SalaryBreakdown{
			PersonalDeduction:  personal,
			DependentDeduction: dependent,
			TaxableIncome:      taxable,
			TaxBrackets:        brackets,
		},
		Converged: true,
	}
}

// NetToGross searches for the gross salary whose take-home pay is net. Tax is
// piecewise in gross so there is no closed form; the search applies a damped
// correction to the guess until the computed net is within tolerance or the
// iteration cap is hit. On success NetSalary is set to the requested net exactly.
// On exhaustion the last approximation is returned with Converged=false.
func (c *Calculator) NetToGross(net decimal.Decimal, dependents int, includeUnemployment bool) models.SalaryCalculationResult {
	s := c.rules.Solver
	target := wholeUnits(net)
	tolerance := decimal.NewFromInt(s.Tolerance)
	damping := rate(s.Damping)

	guess := target.Mul(rate(s.SeedMultiplier)).Truncate(0)

	var result models.SalaryCalculationResult
	var diff decimal.Decimal
	for i := 1; i <= s.MaxIterations; i++ {
		result = c.GrossToNet(guess, dependents, includeUnemployment)
		diff = result.NetSalary.Sub(target)

		if diff.Abs().LessThan(tolerance) {
			result.NetSalary = target
			result.Converged = true
			result.Iterations = i
			return result
		}

		guess = guess.Sub(diff.Mul(damping)).Truncate(0)
	}

	result.Converged = false
	result.Iterations = s.MaxIterations
	c.log.WithFields(logrus.Fields{
		"target_net": target.String(),
		"gross":      result.GrossSalary.String(),
		"diff":       diff.String(),
		"iterations": s.MaxIterations,
	}).Warn("net-to-gross search did not converge")

	return result
}
