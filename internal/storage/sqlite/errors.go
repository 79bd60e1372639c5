package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dailyworkspace/daybook/internal/storage"
)

// Sentinel errors are shared with the storage package so callers can match
// them without importing this implementation.
var (
	ErrNotFound   = storage.ErrNotFound
	ErrConflict   = storage.ErrConflict
	ErrValidation = storage.ErrValidation
)

// wrapDBError wraps a database error with operation context.
// It converts sql.ErrNoRows to ErrNotFound and UNIQUE violations to ErrConflict.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if IsUniqueConstraintError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wrapDBErrorf is wrapDBError with a formatted operation.
func wrapDBErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return wrapDBError(fmt.Sprintf(format, args...), err)
}

// validationError marks err as a validation failure.
func validationError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
}

// notFoundIfNoRows turns a zero RowsAffected into ErrNotFound.
func notFoundIfNoRows(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
