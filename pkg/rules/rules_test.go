package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())
	assert.InDelta(t, 0.105, r.Insurance.Total(), 1e-12)
	assert.True(t, r.Brackets[len(r.Brackets)-1].Unbounded())
}

func TestRegionFallback(t *testing.T) {
	r := Default()

	tests := []struct {
		tier       int
		wage       int64
		multiplier float64
	}{
		{1, 4_960_000, 1.10},
		{2, 4_410_000, 1.05},
		{3, 3_860_000, 1.00},
		{4, 3_450_000, 0.95},
		{0, 4_960_000, 1.10},
		{5, 4_960_000, 1.10},
		{-3, 4_960_000, 1.10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wage, r.RegionWage(tt.tier), "tier %d", tt.tier)
		assert.Equal(t, tt.multiplier, r.RegionMultiplier(tt.tier), "tier %d", tt.tier)
	}
}

func TestBenefitDurationLadder(t *testing.T) {
	r := Default()

	tests := []struct {
		months int
		want   int
	}{
		{0, 0},
		{11, 0},
		{12, 2},
		{23, 2},
		{24, 3},
		{35, 3},
		{36, 4},
		{71, 4},
		{72, 6},
		{107, 6},
		{108, 9},
		{143, 9},
		{144, 12},
		{400, 12},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.BenefitDuration(tt.months), "months %d", tt.months)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	data := []byte(`
personal_deduction = 15500000

[insurance]
health = 0.02

[[brackets]]
upper_bound = 10000000
rate = 0.1

[[brackets]]
upper_bound = 0
rate = 0.2
`)

	r, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, int64(15_500_000), r.PersonalDeduction)
	assert.Equal(t, int64(4_400_000), r.DependentDeduction)
	assert.Equal(t, 0.08, r.Insurance.Social)
	assert.Equal(t, 0.02, r.Insurance.Health)
	assert.Equal(t, []models.TaxBracket{
		{UpperBound: 10_000_000, Rate: 0.1},
		{UpperBound: 0, Rate: 0.2},
	}, r.Brackets)
	assert.Equal(t, 50, r.Solver.MaxIterations)
}

func TestParseKeepsExplicitZeros(t *testing.T) {
	r, err := Parse([]byte(`
[insurance]
unemployment = 0.0

[social_insurance]
voluntary_rate = 0.0
`))
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.Insurance.Unemployment)
	assert.Equal(t, 0.08, r.Insurance.Social)
	assert.Equal(t, 0.0, r.SocialInsurance.VoluntaryRate)
	assert.Equal(t, 0.08, r.SocialInsurance.MandatoryRate)
	assert.Equal(t, Default().SocialInsurance.RegionMultipliers, r.SocialInsurance.RegionMultipliers)
}

func TestParseReplacesNestedLists(t *testing.T) {
	r, err := Parse([]byte(`
[unemployment]
max_age = 62

[[unemployment.durations]]
min_months = 12
months = 3

[[unemployment.durations]]
min_months = 60
months = 6
`))
	require.NoError(t, err)

	assert.Equal(t, 62, r.Unemployment.MaxAge)
	assert.Equal(t, []DurationStep{{MinMonths: 12, Months: 3}, {MinMonths: 60, Months: 6}}, r.Unemployment.Durations)
	assert.Equal(t, 6, r.BenefitDuration(200))
}

func TestProjectionHorizon(t *testing.T) {
	assert.Equal(t, 100, Default().Projection.MaxYears)

	r, err := Parse([]byte("[projection]\nmax_years = 40\n"))
	require.NoError(t, err)
	assert.Equal(t, 40, r.Projection.MaxYears)
}

func TestParseRejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"rate above one", `
[[brackets]]
upper_bound = 0
rate = 1.5
`},
		{"unbounded bracket not last", `
[[brackets]]
upper_bound = 0
rate = 0.1

[[brackets]]
upper_bound = 5000000
rate = 0.2
`},
		{"last bracket bounded", `
[[brackets]]
upper_bound = 5000000
rate = 0.1
`},
		{"descending brackets", `
[[brackets]]
upper_bound = 5000000
rate = 0.1

[[brackets]]
upper_bound = 4000000
rate = 0.2

[[brackets]]
upper_bound = 0
rate = 0.3
`},
		{"wrong number of regions", `region_wages = [1, 2, 3]`},
		{"zero projection horizon", "[projection]\nmax_years = 0\n"},
		{"projection horizon too long", "[projection]\nmax_years = 5000\n"},
		{"zero solver tolerance", "[solver]\ntolerance = 0\n"},
		{"malformed toml", `personal_deduction = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte("dependent_deduction = 6200000\n"), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(6_200_000), r.DependentDeduction)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
