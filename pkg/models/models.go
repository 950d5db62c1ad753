package models

import (
	"github.com/shopspring/decimal"
)

// TaxBracket is one step of the progressive tax table. An UpperBound of zero or
// less marks the final, unbounded bracket.
type TaxBracket struct {
	UpperBound int64   `json:"upper_bound" toml:"upper_bound" validate:"gte=0"`
	Rate       float64 `json:"rate" toml:"rate" validate:"gte=0,lte=1"`
}

// Unbounded reports whether the bracket has no upper limit.
func (b TaxBracket) Unbounded() bool {
	return b.UpperBound <= 0
}

type TaxInput struct {
	GrossSalary        decimal.Decimal  `json:"gross_salary"`
	Dependents         int              `json:"dependents"`
	PersonalDeduction  decimal.Decimal  `json:"personal_deduction"`            // zero means the rules default
	InsuranceDeduction *decimal.Decimal `json:"insurance_deduction,omitempty"` // nil means derive from statutory rates
	OtherDeductions    decimal.Decimal  `json:"other_deductions"`
}

type TaxBreakdownEntry struct {
	BracketIndex  int             `json:"bracket_index"` // 1-based
	Rate          float64         `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	Tax           decimal.Decimal `json:"tax"`
	Description   string          `json:"description"`
}

type TaxCalculationResult struct {
	GrossSalary        decimal.Decimal     `json:"gross_salary"`
	PersonalDeduction  decimal.Decimal     `json:"personal_deduction"`
	DependentDeduction decimal.Decimal     `json:"dependent_deduction"`
	InsuranceDeduction decimal.Decimal     `json:"insurance_deduction"`
	OtherDeductions    decimal.Decimal     `json:"other_deductions"`
	TaxableIncome      decimal.Decimal     `json:"taxable_income"`
	Tax                decimal.Decimal     `json:"tax"`
	NetSalary          decimal.Decimal     `json:"net_salary"`
	Breakdown          []TaxBreakdownEntry `json:"breakdown"`
}

type SalaryDirection string

const (
	GrossToNet SalaryDirection = "gross_to_net"
	NetToGross SalaryDirection = "net_to_gross"
)

// SalaryInput carries a single amount interpreted as gross or net depending on Direction.
type SalaryInput struct {
	Amount              decimal.Decimal `json:"amount"`
	Direction           SalaryDirection `json:"direction"`
	Dependents          int             `json:"dependents"`
	IncludeUnemployment bool            `json:"include_unemployment"`
}

type SalaryBreakdown struct {
	PersonalDeduction  decimal.Decimal     `json:"personal_deduction"`
	DependentDeduction decimal.Decimal     `json:"dependent_deduction"`
	TaxableIncome      decimal.Decimal     `json:"taxable_income"`
	TaxBrackets        []TaxBreakdownEntry `json:"tax_brackets"`
}

type SalaryCalculationResult struct {
	GrossSalary           decimal.Decimal `json:"gross_salary"`
	NetSalary             decimal.Decimal `json:"net_salary"`
	SocialInsurance       decimal.Decimal `json:"social_insurance"`
	HealthInsurance       decimal.Decimal `json:"health_insurance"`
	UnemploymentInsurance decimal.Decimal `json:"unemployment_insurance"`
	Tax                   decimal.Decimal `json:"tax"`
	TotalDeductions       decimal.Decimal `json:"total_deductions"`
	Breakdown             SalaryBreakdown `json:"breakdown"`
	Converged             bool            `json:"converged"`
	Iterations            int             `json:"iterations"`
}

type CompoundInterestInput struct {
	Principal           decimal.Decimal `json:"principal"`
	AnnualRate          float64         `json:"annual_rate"` // percent, e.g. 7.5
	Years               int             `json:"years"`
	CompoundFrequency   int             `json:"compound_frequency"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
}

type YearlyProjection struct {
	Year         int             `json:"year"`
	StartAmount  decimal.Decimal `json:"start_amount"`
	Contribution decimal.Decimal `json:"contribution"`
	Interest     decimal.Decimal `json:"interest"`
	EndAmount    decimal.Decimal `json:"end_amount"`
}

type CompoundInterestResult struct {
	Principal          decimal.Decimal    `json:"principal"`
	TotalContributions decimal.Decimal    `json:"total_contributions"`
	TotalInvested      decimal.Decimal    `json:"total_invested"`
	FinalAmount        decimal.Decimal    `json:"final_amount"`
	TotalInterest      decimal.Decimal    `json:"total_interest"`
	YearlyBreakdown    []YearlyProjection `json:"yearly_breakdown"`
	EffectiveRate      float64            `json:"effective_rate"` // percent per year
}

type InsuranceType string

const (
	InsuranceMandatory InsuranceType = "mandatory"
	InsuranceVoluntary InsuranceType = "voluntary"
	InsuranceBoth      InsuranceType = "both"
)

type SocialInsuranceInput struct {
	AverageSalary      decimal.Decimal `json:"average_salary"`
	ContributionMonths int             `json:"contribution_months"`
	InsuranceType      InsuranceType   `json:"insurance_type"`
	RegionLevel        int             `json:"region_level"`
}

type ContributionPeriod struct {
	ID            int             `json:"id"`
	StartYear     int             `json:"start_year"`
	EndYear       int             `json:"end_year"`
	Months        int             `json:"months"`
	AverageSalary decimal.Decimal `json:"average_salary"`
}

type SocialInsuranceResult struct {
	TotalAmount        decimal.Decimal      `json:"total_amount"`
	AverageSalary      decimal.Decimal      `json:"average_salary"`
	ContributionMonths int                  `json:"contribution_months"`
	Periods            []ContributionPeriod `json:"periods"`
}

// Eligibility is the outcome of the unemployment eligibility check.
type Eligibility string

const (
	Eligible               Eligibility = "ELIGIBLE"
	NotEnoughContributions Eligibility = "NOT_ENOUGH_CONTRIBUTIONS"
	TooOld                 Eligibility = "TOO_OLD"
	OtherIssues            Eligibility = "OTHER_ISSUES" // reserved, not produced by current rules
)

// BenefitPolicy selects how the monthly unemployment benefit is clamped.
type BenefitPolicy string

const (
	BenefitCapOnly     BenefitPolicy = "cap_only"
	BenefitFloorAndCap BenefitPolicy = "floor_and_cap"
)

type UnemploymentInput struct {
	AverageSalary      decimal.Decimal `json:"average_salary"`
	ContributionMonths int             `json:"contribution_months"`
	Age                int             `json:"age"`
	RegionLevel        int             `json:"region_level"`
	VocationalTraining bool            `json:"vocational_training"`
	Policy             BenefitPolicy   `json:"policy,omitempty"`
}

type UnemploymentResult struct {
	MonthlyBenefit decimal.Decimal `json:"monthly_benefit"`
	DurationMonths int             `json:"duration_months"`
	TotalBenefit   decimal.Decimal `json:"total_benefit"`
	Eligibility    Eligibility     `json:"eligibility"`
	Requirements   []string        `json:"requirements"`
}
