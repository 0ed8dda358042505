package persistence

import (
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the unit of work reports as domain errors
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// translateError maps driver errors that callers can act on to domain errors.
// Domain errors and unknown errors pass through unchanged.
func translateError(err error) error {
	if err == nil || shared.IsDomainError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
		return shared.WrapDomainError(shared.CodeConcurrencyConflict,
			"Resource is locked by another request, retry later", err)
	case pgUniqueViolation:
		return shared.WrapDomainError(shared.CodeValidation,
			"A record with the same unique value already exists", err)
	case pgForeignKeyViolation:
		return shared.WrapDomainError(shared.CodeNotFound,
			"Referenced record does not exist", err)
	}
	return err
}
