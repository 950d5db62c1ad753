package rules

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/pelletier/go-toml/v2"
)

const (
	MinRegion = 1
	MaxRegion = 4
)

var validate = validator.New()

// InsuranceRates are the employee-side statutory contribution rates.
type InsuranceRates struct {
	Social       float64 `json:"social" toml:"social" validate:"gte=0,lte=1"`
	Health       float64 `json:"health" toml:"health" validate:"gte=0,lte=1"`
	Unemployment float64 `json:"unemployment" toml:"unemployment" validate:"gte=0,lte=1"`
}

// Total is the combined rate used when the caller does not supply an insurance deduction.
func (r InsuranceRates) Total() float64 {
	return r.Social + r.Health + r.Unemployment
}

type SocialInsuranceRules struct {
	MandatoryRate     float64   `json:"mandatory_rate" toml:"mandatory_rate" validate:"gte=0,lte=1"`
	VoluntaryRate     float64   `json:"voluntary_rate" toml:"voluntary_rate" validate:"gte=0,lte=1"`
	MandatoryShare    float64   `json:"mandatory_share" toml:"mandatory_share" validate:"gte=0,lte=1"`
	RegionMultipliers []float64 `json:"region_multipliers" toml:"region_multipliers" validate:"len=4,dive,gt=0"`
	PeriodStartYear   int       `json:"period_start_year" toml:"period_start_year" validate:"gt=0"`
	PeriodEndYear     int       `json:"period_end_year" toml:"period_end_year" validate:"gtefield=PeriodStartYear"`
}

// DurationStep grants Months of benefit once contributions reach MinMonths.
type DurationStep struct {
	MinMonths int `json:"min_months" toml:"min_months" validate:"gte=0"`
	Months    int `json:"months" toml:"months" validate:"gt=0"`
}

type UnemploymentRules struct {
	MinContributionMonths int            `json:"min_contribution_months" toml:"min_contribution_months" validate:"gt=0"`
	MaxAge                int            `json:"max_age" toml:"max_age" validate:"gt=0"`
	BenefitRate           float64        `json:"benefit_rate" toml:"benefit_rate" validate:"gt=0,lte=1"`
	CapMultiplier         int64          `json:"cap_multiplier" toml:"cap_multiplier" validate:"gt=0"`
	Durations             []DurationStep `json:"durations" toml:"durations" validate:"min=1,dive"`
}

// ProjectionRules bound the compound interest projection horizon.
type ProjectionRules struct {
	MaxYears int `json:"max_years" toml:"max_years" validate:"gt=0,lte=1000"`
}

// SolverRules bound the net-to-gross search.
type SolverRules struct {
	SeedMultiplier float64 `json:"seed_multiplier" toml:"seed_multiplier" validate:"gt=0"`
	Damping        float64 `json:"damping" toml:"damping" validate:"gt=0"`
	Tolerance      int64   `json:"tolerance" toml:"tolerance" validate:"gt=0"`
	MaxIterations  int     `json:"max_iterations" toml:"max_iterations" validate:"gt=0,lte=1000"`
}

// Rules is the immutable constants table shared by all calculators.
// Build it once with Default or Load and pass it by pointer; never mutate it afterwards.
type Rules struct {
	Brackets           []models.TaxBracket  `json:"brackets" toml:"brackets" validate:"min=1,dive"`
	PersonalDeduction  int64                `json:"personal_deduction" toml:"personal_deduction" validate:"gte=0"`
	DependentDeduction int64                `json:"dependent_deduction" toml:"dependent_deduction" validate:"gte=0"`
	Insurance          InsuranceRates       `json:"insurance" toml:"insurance"`
	RegionWages        []int64              `json:"region_wages" toml:"region_wages" validate:"len=4,dive,gt=0"`
	SocialInsurance    SocialInsuranceRules `json:"social_insurance" toml:"social_insurance"`
	Unemployment       UnemploymentRules    `json:"unemployment" toml:"unemployment"`
	Projection         ProjectionRules      `json:"projection" toml:"projection"`
	Solver             SolverRules          `json:"solver" toml:"solver"`
}

// Default returns the Vietnamese monthly rules table.
func Default() *Rules {
	return &Rules{
		Brackets: []models.TaxBracket{
			{UpperBound: 5_000_000, Rate: 0.05},
			{UpperBound: 10_000_000, Rate: 0.10},
			{UpperBound: 18_000_000, Rate: 0.15},
			{UpperBound: 32_000_000, Rate: 0.20},
			{UpperBound: 52_000_000, Rate: 0.25},
			{UpperBound: 80_000_000, Rate: 0.30},
			{UpperBound: 0, Rate: 0.35},
		},
		PersonalDeduction:  11_000_000,
		DependentDeduction: 4_400_000,
		Insurance: InsuranceRates{
			Social:       0.08,
			Health:       0.015,
			Unemployment: 0.01,
		},
		RegionWages: []int64{4_960_000, 4_410_000, 3_860_000, 3_450_000},
		SocialInsurance: SocialInsuranceRules{
			MandatoryRate:     0.08,
			VoluntaryRate:     0.22,
			MandatoryShare:    0.7,
			RegionMultipliers: []float64{1.10, 1.05, 1.00, 0.95},
			PeriodStartYear:   2020,
			PeriodEndYear:     2024,
		},
		Unemployment: UnemploymentRules{
			MinContributionMonths: 12,
			MaxAge:                60,
			BenefitRate:           0.60,
			CapMultiplier:         5,
			Durations: []DurationStep{
				{MinMonths: 12, Months: 2},
				{MinMonths: 24, Months: 3},
				{MinMonths: 36, Months: 4},
				{MinMonths: 72, Months: 6},
				{MinMonths: 108, Months: 9},
				{MinMonths: 144, Months: 12},
			},
		},
		Projection: ProjectionRules{
			MaxYears: 100,
		},
		Solver: SolverRules{
			SeedMultiplier: 1.2,
			Damping:        1.3,
			Tolerance:      1000,
			MaxIterations:  50,
		},
	}
}

// Load reads a TOML rules file. Sections and keys missing from the file keep their
// default values; a key present in the file replaces the default, and a list present
// in the file replaces the default list entirely.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML rules over the defaults and validates the result. Keys present
// in the file win, including explicit zeros.
func Parse(data []byte) (*Rules, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	r := Default()
	r.clearListedLists(raw)
	if err := toml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// clearListedLists drops the default value of every list the file sets, so array
// tables replace the defaults instead of extending them.
func (r *Rules) clearListedLists(raw map[string]any) {
	if hasKey(raw, "brackets") {
		r.Brackets = nil
	}
	if hasKey(raw, "region_wages") {
		r.RegionWages = nil
	}
	if hasKey(raw, "social_insurance", "region_multipliers") {
		r.SocialInsurance.RegionMultipliers = nil
	}
	if hasKey(raw, "unemployment", "durations") {
		r.Unemployment.Durations = nil
	}
}

func hasKey(raw map[string]any, path ...string) bool {
	for i, key := range path {
		v, ok := raw[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		if raw, ok = v.(map[string]any); !ok {
			return false
		}
	}
	return false
}

// Validate checks field ranges and the ordering constraints of the bracket and
// duration ladders.
func (r *Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	var prev int64
	for i, b := range r.Brackets {
		last := i == len(r.Brackets)-1
		if b.Unbounded() {
			if !last {
				return fmt.Errorf("invalid rules: bracket %d is unbounded but not last", i+1)
			}
			continue
		}
		if last {
			return errors.New("invalid rules: last bracket must be unbounded")
		}
		if b.UpperBound <= prev {
			return fmt.Errorf("invalid rules: bracket %d upper bound %d is not above %d", i+1, b.UpperBound, prev)
		}
		prev = b.UpperBound
	}

	for i := 1; i < len(r.Unemployment.Durations); i++ {
		if r.Unemployment.Durations[i].MinMonths <= r.Unemployment.Durations[i-1].MinMonths {
			return fmt.Errorf("invalid rules: duration step %d is not ascending", i+1)
		}
	}

	return nil
}

// NormalizeRegion maps an out-of-range tier to tier 1.
func NormalizeRegion(tier int) int {
	if tier < MinRegion || tier > MaxRegion {
		return MinRegion
	}
	return tier
}

// RegionWage returns the regional minimum wage for tier, falling back to tier 1.
func (r *Rules) RegionWage(tier int) int64 {
	return r.RegionWages[NormalizeRegion(tier)-1]
}

// RegionMultiplier returns the social insurance adjustment for tier, falling back to tier 1.
func (r *Rules) RegionMultiplier(tier int) float64 {
	return r.SocialInsurance.RegionMultipliers[NormalizeRegion(tier)-1]
}

// BenefitDuration returns the months of unemployment benefit granted for the given
// contribution history, or 0 below the first step.
func (r *Rules) BenefitDuration(contributionMonths int) int {
	months := 0
	for _, step := range r.Unemployment.Durations {
		if contributionMonths < step.MinMonths {
			break
		}
		months = step.Months
	}
	return months
}
