package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/paycalc/pkg/models"

	_ "github.com/lib/pq"
)

// PostgresStore keeps calculation history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with a lib/pq connection string, e.g.
// "host=localhost port=5432 user=paycalc dbname=paycalc sslmode=disable".
func NewPostgresStore(conn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS calculations (
		id UUID PRIMARY KEY,
		kind TEXT NOT NULL,
		input JSONB NOT NULL,
		result JSONB NOT NULL,
		converged BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_calculations_kind_created ON calculations(kind, created_at);
	CREATE INDEX IF NOT EXISTS idx_calculations_created ON calculations(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateCalculation inserts a calculation record.
func (s *PostgresStore) CreateCalculation(calc *models.Calculation) error {
	_, err := s.db.Exec(
		`INSERT INTO calculations (`+calculationColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		calc.ID.String(), string(calc.Kind), string(calc.Input), string(calc.Result), calc.Converged, calc.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create calculation: %w", err)
	}
	return nil
}

// GetCalculation retrieves a calculation by its ID.
func (s *PostgresStore) GetCalculation(id uuid.UUID) (*models.Calculation, error) {
	row := s.db.QueryRow(
		`SELECT id::text, kind, input::text, result::text, converged, created_at FROM calculations WHERE id = $1`,
		id.String(),
	)
	calc, err := scanCalculation(row)
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get calculation: %w", err)
	}
	return calc, nil
}

// ListCalculations retrieves calculations newest first. A NULL limit is unbounded.
func (s *PostgresStore) ListCalculations(kind models.CalculationKind, limit int) ([]*models.Calculation, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	rows, err := s.db.Query(
		`SELECT id::text, kind, input::text, result::text, converged, created_at FROM calculations
		WHERE ($1 = '' OR kind = $1) ORDER BY created_at DESC LIMIT $2`,
		string(kind), lim,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	return scanCalculations(rows)
}

// DeleteCalculation removes a calculation by its ID.
func (s *PostgresStore) DeleteCalculation(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM calculations WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}
	return checkAffected(result)
}

// DeleteCalculationsBefore removes every calculation created before cutoff.
func (s *PostgresStore) DeleteCalculationsBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM calculations WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune calculations: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
