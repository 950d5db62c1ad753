package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mcclellann/paycalc/pkg/models"
)

const calculationColumns = `id, kind, input, result, converged, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalculation(row rowScanner) (*models.Calculation, error) {
	var calc models.Calculation
	var idStr, kind, input, result string
	var created time.Time

	if err := row.Scan(&idStr, &kind, &input, &result, &calc.Converged, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan calculation row: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid calculation id %q: %w", idStr, err)
	}
	calc.ID = id
	calc.Kind = models.CalculationKind(kind)
	calc.Input = json.RawMessage(input)
	calc.Result = json.RawMessage(result)
	calc.CreatedAt = created.UTC()
	return &calc, nil
}

func scanCalculations(rows *sql.Rows) ([]*models.Calculation, error) {
	calcs := []*models.Calculation{}
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return calcs, nil
}

// checkAffected maps a delete that touched no rows to ErrNotFound.
func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
