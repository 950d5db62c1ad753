package store

import "fmt"

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open returns the Storage implementation for driver.
func Open(driver, conn string) (Storage, error) {
	switch driver {
	case DriverSQLite, "sqlite", "":
		return NewSQLiteStore(conn)
	case DriverPostgres, "postgresql":
		return NewPostgresStore(conn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
