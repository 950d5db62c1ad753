package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/paycalc/pkg/models"
)

// ErrNotFound is returned when a calculation id does not exist.
var ErrNotFound = errors.New("calculation not found")

// Storage defines the interface for persisting calculation history.
type Storage interface {
	CreateCalculation(calc *models.Calculation) error
	GetCalculation(id uuid.UUID) (*models.Calculation, error)
	// ListCalculations returns the newest calculations first. An empty kind matches
	// every kind; a limit of zero or less means no limit.
	ListCalculations(kind models.CalculationKind, limit int) ([]*models.Calculation, error)
	DeleteCalculation(id uuid.UUID) error
	DeleteCalculationsBefore(cutoff time.Time) (int64, error)

	Close() error
}
