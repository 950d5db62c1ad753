package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/paycalc/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps calculation history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dataSourceName and creates the schema.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the calculations table if it doesn't already exist.
// Input and result are stored as JSON text.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		input TEXT NOT NULL,
		result TEXT NOT NULL,
		converged INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_calculations_kind_created ON calculations(kind, created_at);
	CREATE INDEX IF NOT EXISTS idx_calculations_created ON calculations(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateCalculation inserts a calculation record.
func (s *SQLiteStore) CreateCalculation(calc *models.Calculation) error {
	_, err := s.db.Exec(
		`INSERT INTO calculations (`+calculationColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		calc.ID.String(), string(calc.Kind), string(calc.Input), string(calc.Result), calc.Converged, calc.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create calculation: %w", err)
	}
	return nil
}

// GetCalculation retrieves a calculation by its ID.
func (s *SQLiteStore) GetCalculation(id uuid.UUID) (*models.Calculation, error) {
	row := s.db.QueryRow(`SELECT `+calculationColumns+` FROM calculations WHERE id = ?`, id.String())
	calc, err := scanCalculation(row)
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get calculation: %w", err)
	}
	return calc, nil
}

// ListCalculations retrieves calculations newest first.
func (s *SQLiteStore) ListCalculations(kind models.CalculationKind, limit int) ([]*models.Calculation, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	var rows *sql.Rows
	var err error
	if kind == "" {
		rows, err = s.db.Query(`SELECT `+calculationColumns+` FROM calculations ORDER BY created_at DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(`SELECT `+calculationColumns+` FROM calculations WHERE kind = ? ORDER BY created_at DESC LIMIT ?`, string(kind), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	return scanCalculations(rows)
}

// DeleteCalculation removes a calculation by its ID.
func (s *SQLiteStore) DeleteCalculation(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM calculations WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}
	return checkAffected(result)
}

// DeleteCalculationsBefore removes every calculation created before cutoff and
// returns how many were removed.
func (s *SQLiteStore) DeleteCalculationsBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM calculations WHERE created_at < ?`, cutoff.UTC())
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
