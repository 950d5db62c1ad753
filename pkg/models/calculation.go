package models

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type CalculationKind string

const (
	KindTax              CalculationKind = "tax"
	KindSalary           CalculationKind = "salary"
	KindCompoundInterest CalculationKind = "compound_interest"
	KindSocialInsurance  CalculationKind = "social_insurance"
	KindUnemployment     CalculationKind = "unemployment"
)

// Valid reports whether k is one of the known calculation kinds.
func (k CalculationKind) Valid() bool {
	switch k {
	case KindTax, KindSalary, KindCompoundInterest, KindSocialInsurance, KindUnemployment:
		return true
	}
	return false
}

// Calculation is a recorded calculator call kept in the history store.
type Calculation struct {
	ID        uuid.UUID       `json:"id"`
	Kind      CalculationKind `json:"kind"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	Converged bool            `json:"converged"` // false only for a net-to-gross search that ran out of iterations
	CreatedAt time.Time       `json:"created_at"`
}
