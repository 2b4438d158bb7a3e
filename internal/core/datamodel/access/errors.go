package access

import (
	"errors"
	"strings"

	"github.com/frahmantamala/admin-access/internal"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error codes surfaced by pgx for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// TranslateError converts driver-level failures into the typed taxonomy so
// engine code never inspects raw store error text. It understands pgconn
// errors (production) and the sqlite message format (tests); anything
// unrecognized becomes an internal error.
func TranslateError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.NewNotFoundError(entity, nil)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return internal.NewDuplicateEntryError(fieldFromConstraint(pgErr.ConstraintName), nil).WithCause(err)
		case pgForeignKeyViolation:
			return internal.NewIntegrityError("referenced " + entity + " does not exist").WithCause(err)
		}
		return internal.NewInternalError("store failure", err)
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return internal.NewDuplicateEntryError(fieldFromSQLiteMessage(msg), nil).WithCause(err)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return internal.NewIntegrityError("referenced " + entity + " does not exist").WithCause(err)
	}

	return internal.NewInternalError("store failure", err)
}

// fieldFromConstraint maps an index name like "users_email_key" or
// "idx_users_email" to the column it guards.
func fieldFromConstraint(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	name = strings.TrimPrefix(name, "idx_")
	if i := strings.LastIndex(name, "_"); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

// fieldFromSQLiteMessage extracts the column from
// "UNIQUE constraint failed: users.email".
func fieldFromSQLiteMessage(msg string) string {
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		qualified := msg[i+2:]
		if j := strings.LastIndex(qualified, "."); j >= 0 {
			return qualified[j+1:]
		}
		return qualified
	}
	return "unknown"
}
