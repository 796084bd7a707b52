package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"grouporder/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// mapPQError translates driver errors into domain errors. Unknown errors are
// wrapped as upstream failures.
func mapPQError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
		case pqForeignKeyViolation:
			// Deletes of a referenced row report the parent table; inserts report the child.
			if strings.HasPrefix(pqErr.Message, "update or delete on table") {
				return fmt.Errorf("%s: %w", op, domain.ErrInUse)
			}
			return fmt.Errorf("%s: referenced record does not exist: %w", op, domain.ErrNotFound)
		case pqCheckViolation:
			v := domain.NewValidationError()
			v.Add(pqErr.Column, pqErr.Message)
			if pqErr.Column == "" {
				v.Add(pqErr.Constraint, pqErr.Message)
			}
			return v
		}
	}
	return domain.Upstream(op, err)
}

func checkAffected(result sql.Result, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Upstream(op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
