package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/genflow/internal/durable"
)

// PostgreSQL error codes and classes
const (
	// programLimitExceededCode is raised for values beyond a hard limit,
	// e.g. a bytea larger than 1GB
	programLimitExceededCode = "54000"

	// diskFullCode is raised when the server cannot extend a table
	diskFullCode = "53100"

	// undefinedTableCode means the migrations have not been applied
	undefinedTableCode = "42P01"

	// connectionExceptionClass covers every 08xxx code
	connectionExceptionClass = "08"

	// insufficientResourcesClass covers every 53xxx code
	insufficientResourcesClass = "53"
)

// MapError maps a database error onto the durable store errors. It wraps the
// original error to preserve context for debugging.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", durable.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == programLimitExceededCode, pgErr.Code == diskFullCode:
			return fmt.Errorf("%w: %v", durable.ErrQuotaExceeded, err)
		case pgErr.Code == undefinedTableCode:
			return fmt.Errorf("%w: schema missing, run migrations: %v", durable.ErrUnavailable, err)
		case errorClass(pgErr.Code) == connectionExceptionClass,
			errorClass(pgErr.Code) == insufficientResourcesClass:
			return fmt.Errorf("%w: %v", durable.ErrUnavailable, err)
		}
		return err
	}

	// Anything that never reached the server (dial failures, timeouts,
	// closed pools) leaves the medium unreachable.
	return fmt.Errorf("%w: %v", durable.ErrUnavailable, err)
}

// IsNotFoundError checks if the given error represents a "not found" scenario.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, durable.ErrNotFound)
}

func errorClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}
