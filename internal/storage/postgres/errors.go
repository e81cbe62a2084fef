package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// UnwrapPgError returns the *pgconn.PgError in err's chain, or nil.
func UnwrapPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func isUniqueViolation(err error) bool {
	pgErr := UnwrapPgError(err)
	return pgErr != nil && pgErr.Code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	pgErr := UnwrapPgError(err)
	return pgErr != nil && pgErr.Code == codeForeignKeyViolation
}

// storageErr wraps an unexpected database failure as a storage error.
// Typed application errors pass through unchanged.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return app_errors.Storage(fmt.Errorf("%s: %w", op, err))
}
