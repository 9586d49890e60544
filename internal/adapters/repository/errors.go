package repository

import (
	"errors"
	"fmt"

	"github.com/okian/papermatch/internal/domain/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel kinds for store errors. Callers usually match the domain kind
// (model.ErrNotFound, model.ErrConflict) the store wraps them with.
var (
	ErrTargetNotFound = errors.New("target not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrMatchExists    = errors.New("match already recorded")
	ErrMatchNotFound  = errors.New("match not found")
	ErrInvalidRecord  = errors.New("record violates a schema constraint")
	ErrMigrate        = errors.New("migrate failed")
	ErrOpen           = errors.New("open store failed")
)

func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

func isUniqueViolation(err error) bool {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	return sqliteCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

func isConstraintError(err error) bool {
	code := sqliteCode(err)
	return code != 0 && code&0xff == sqlite3.SQLITE_CONSTRAINT
}

// isSignal reports expected outcomes that callers branch on.
func isSignal(err error) bool {
	return errors.Is(err, model.ErrAlreadyReacted) ||
		errors.Is(err, model.ErrNoReaction) ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrConflict)
}

// classify maps a write failure to the domain taxonomy.
func classify(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return model.WrapKind(op, model.ErrConflict, err)
	case isForeignKeyViolation(err):
		return model.WrapKind(op, model.ErrNotFound, ErrTargetNotFound)
	case isConstraintError(err):
		return model.WrapKind(op, model.ErrValidation, fmt.Errorf("%w: %w", ErrInvalidRecord, err))
	default:
		return model.Wrap(op, err)
	}
}
