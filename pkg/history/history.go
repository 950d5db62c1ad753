package history

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mcclellann/paycalc/pkg/calculator"
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/mcclellann/paycalc/pkg/store"
	"github.com/sirupsen/logrus"
)

// ErrUnknownKind is returned when listing by a kind that is not recorded.
var ErrUnknownKind = errors.New("unknown calculation kind")

// History runs calculations and records each call in the history store.
type History struct {
	calc    *calculator.Calculator
	storage store.Storage
	log     logrus.FieldLogger
	now     func() time.Time
}

// New creates a History over the given calculator and Storage implementation.
func New(calc *calculator.Calculator, s store.Storage, log logrus.FieldLogger) *History {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &History{
		calc:    calc,
		storage: s,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Calculator returns the calculator the history records for.
func (h *History) Calculator() *calculator.Calculator {
	return h.calc
}

// record stores one calculation. The returned Calculation is valid even when err is
// non-nil so callers can still serve the result.
func (h *History) record(kind models.CalculationKind, input, result any, converged bool) (*models.Calculation, error) {
	in, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s input: %w", kind, err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", kind, err)
	}

	calc := &models.Calculation{
		ID:        uuid.New(),
		Kind:      kind,
		Input:     in,
		Result:    out,
		Converged: converged,
		CreatedAt: h.now(),
	}
	if err := h.storage.CreateCalculation(calc); err != nil {
		h.log.WithFields(logrus.Fields{"kind": kind, "id": calc.ID}).WithError(err).Error("failed to record calculation")
		return calc, fmt.Errorf("failed to store calculation: %w", err)
	}
	return calc, nil
}

// Tax computes personal income tax and records it.
func (h *History) Tax(in models.TaxInput) (models.TaxCalculationResult, *models.Calculation, error) {
	res := h.calc.CalculateTax(in)
	calc, err := h.record(models.KindTax, in, res, true)
	return res, calc, err
}

// Salary converts between gross and net salary and records it. A net-to-gross search
// that ran out of iterations is recorded with Converged=false.
func (h *History) Salary(in models.SalaryInput) (models.SalaryCalculationResult, *models.Calculation, error) {
	res := h.calc.CalculateSalary(in)
	calc, err := h.record(models.KindSalary, in, res, res.Converged)
	return res, calc, err
}

// CompoundInterest projects savings growth and records it.
func (h *History) CompoundInterest(in models.CompoundInterestInput) (models.CompoundInterestResult, *models.Calculation, error) {
	res := h.calc.ProjectCompoundInterest(in)
	calc, err := h.record(models.KindCompoundInterest, in, res, true)
	return res, calc, err
}

// SocialInsurance estimates the social insurance lump sum and records it.
func (h *History) SocialInsurance(in models.SocialInsuranceInput) (models.SocialInsuranceResult, *models.Calculation, error) {
	res := h.calc.EstimateSocialInsurance(in)
	calc, err := h.record(models.KindSocialInsurance, in, res, true)
	return res, calc, err
}

// Unemployment estimates unemployment benefits and records it.
func (h *History) Unemployment(in models.UnemploymentInput) (models.UnemploymentResult, *models.Calculation, error) {
	res := h.calc.EstimateUnemployment(in)
	calc, err := h.record(models.KindUnemployment, in, res, true)
	return res, calc, err
}

// Get retrieves a recorded calculation by ID.
func (h *History) Get(id uuid.UUID) (*models.Calculation, error) {
	return h.storage.GetCalculation(id)
}

// List returns recorded calculations newest first, optionally filtered by kind.
func (h *History) List(kind models.CalculationKind, limit int) ([]*models.Calculation, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return h.storage.ListCalculations(kind, limit)
}

// Delete removes a recorded calculation.
func (h *History) Delete(id uuid.UUID) error {
	return h.storage.DeleteCalculation(id)
}

// Prune removes calculations older than retention. A non-positive retention keeps
// everything.
func (h *History) Prune(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := h.now().Add(-retention)
	n, err := h.storage.DeleteCalculationsBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	h.log.WithFields(logrus.Fields{"removed": n, "cutoff": cutoff.Format(time.RFC3339)}).Info("pruned calculation history")
	return n, nil
}
