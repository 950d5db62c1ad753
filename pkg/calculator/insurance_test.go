package calculator

import (
	"testing"

	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateSocialInsurance(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		name   string
		kind   models.InsuranceType
		region int
		want   int64
	}{
		{"mandatory tier 3", models.InsuranceMandatory, 3, 96_000_000},
		{"voluntary tier 3", models.InsuranceVoluntary, 3, 264_000_000},
		{"both tier 3", models.InsuranceBoth, 3, 146_400_000},
		{"mandatory tier 1", models.InsuranceMandatory, 1, 105_600_000},
		{"mandatory tier 4", models.InsuranceMandatory, 4, 91_200_000},
		{"out of range tier uses tier 1", models.InsuranceMandatory, 9, 105_600_000},
		{"unknown type is mandatory", "", 3, 96_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.EstimateSocialInsurance(models.SocialInsuranceInput{
				AverageSalary:      amount(10_000_000),
				ContributionMonths: 120,
				InsuranceType:      tt.kind,
				RegionLevel:        tt.region,
			})

			assertAmount(t, tt.want, res.TotalAmount, "total")
			assert.Equal(t, 120, res.ContributionMonths)
			require.Len(t, res.Periods, 1)
			assert.Equal(t, 120, res.Periods[0].Months)
			assert.Equal(t, 2020, res.Periods[0].StartYear)
			assert.Equal(t, 2024, res.Periods[0].EndYear)
		})
	}
}

func TestEstimateSocialInsuranceNoContributions(t *testing.T) {
	c := New(nil, nil)

	res := c.EstimateSocialInsurance(models.SocialInsuranceInput{
		AverageSalary:      amount(10_000_000),
		ContributionMonths: -4,
		InsuranceType:      models.InsuranceBoth,
		RegionLevel:        2,
	})

	assertAmount(t, 0, res.TotalAmount, "total")
	assert.Equal(t, 0, res.ContributionMonths)
}

func TestEstimateUnemployment(t *testing.T) {
	c := New(nil, nil)

	t.Run("not enough contributions", func(t *testing.T) {
		res := c.EstimateUnemployment(models.UnemploymentInput{
			AverageSalary:      amount(15_000_000),
			ContributionMonths: 6,
			Age:                30,
			RegionLevel:        1,
		})

		assert.Equal(t, models.NotEnoughContributions, res.Eligibility)
		assertAmount(t, 0, res.MonthlyBenefit, "monthly")
		assertAmount(t, 0, res.TotalBenefit, "total")
		assert.Zero(t, res.DurationMonths)
		assert.NotEmpty(t, res.Requirements)
	})

	t.Run("too old", func(t *testing.T) {
		res := c.EstimateUnemployment(models.UnemploymentInput{
			AverageSalary:      amount(15_000_000),
			ContributionMonths: 100,
			Age:                60,
			RegionLevel:        1,
		})

		assert.Equal(t, models.TooOld, res.Eligibility)
		assertAmount(t, 0, res.TotalBenefit, "total")
	})

	t.Run("contributions checked before age", func(t *testing.T) {
		res := c.EstimateUnemployment(models.UnemploymentInput{ContributionMonths: 3, Age: 70})
		assert.Equal(t, models.NotEnoughContributions, res.Eligibility)
	})

	t.Run("eligible long contributor", func(t *testing.T) {
		res := c.EstimateUnemployment(models.UnemploymentInput{
			AverageSalary:      amount(15_000_000),
			ContributionMonths: 150,
			Age:                45,
			RegionLevel:        1,
		})

		assert.Equal(t, models.Eligible, res.Eligibility)
		assertAmount(t, 9_000_000, res.MonthlyBenefit, "monthly")
		assert.Equal(t, 12, res.DurationMonths)
		assertAmount(t, 108_000_000, res.TotalBenefit, "total")
	})
}

func TestEstimateUnemploymentDuration(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		months int
		want   int
	}{
		{11, 0},
		{12, 2},
		{23, 2},
		{35, 3},
		{71, 4},
		{72, 6},
		{143, 9},
		{144, 12},
	}

	for _, tt := range tests {
		res := c.EstimateUnemployment(models.UnemploymentInput{
			AverageSalary:      amount(10_000_000),
			ContributionMonths: tt.months,
			Age:                35,
			RegionLevel:        2,
		})
		assert.Equal(t, tt.want, res.DurationMonths, "months %d", tt.months)
		assert.True(t, res.TotalBenefit.Equal(res.MonthlyBenefit.Mul(amount(int64(tt.want)))), "months %d", tt.months)
	}
}

func TestEstimateUnemploymentPolicies(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		name   string
		salary int64
		region int
		policy models.BenefitPolicy
		want   int64
	}{
		{"capped at five regional wages", 50_000_000, 1, models.BenefitCapOnly, 24_800_000},
		{"tier 4 cap", 40_000_000, 4, models.BenefitCapOnly, 17_250_000},
		{"out of range tier uses tier 1 cap", 50_000_000, 0, models.BenefitCapOnly, 24_800_000},
		{"no floor by default", 5_000_000, 1, "", 3_000_000},
		{"no floor with cap only", 5_000_000, 1, models.BenefitCapOnly, 3_000_000},
		{"floor raises to regional wage", 5_000_000, 1, models.BenefitFloorAndCap, 4_960_000},
		{"floor and cap still caps", 50_000_000, 1, models.BenefitFloorAndCap, 24_800_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.EstimateUnemployment(models.UnemploymentInput{
				AverageSalary:      amount(tt.salary),
				ContributionMonths: 40,
				Age:                30,
				RegionLevel:        tt.region,
				Policy:             tt.policy,
			})

			require.Equal(t, models.Eligible, res.Eligibility)
			assertAmount(t, tt.want, res.MonthlyBenefit, "monthly")
			assert.Equal(t, 4, res.DurationMonths)
		})
	}
}

func TestEstimateUnemploymentRequirements(t *testing.T) {
	c := New(nil, nil)
	in := models.UnemploymentInput{ContributionMonths: 24, Age: 30, RegionLevel: 1}

	plain := c.EstimateUnemployment(in).Requirements
	assert.Contains(t, plain[3], "capped at 24,800,000")

	in.VocationalTraining = true
	assert.Len(t, c.EstimateUnemployment(in).Requirements, len(plain)+1)

	in.Policy = models.BenefitFloorAndCap
	reqs := c.EstimateUnemployment(in).Requirements
	assert.Contains(t, reqs[3], "not below 4,960,000")
}
