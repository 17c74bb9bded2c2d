package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// unique_violation
const pgUniqueViolation = "23505"

// IsDuplicate reports whether err comes from a unique-constraint violation.
// The constraint itself lives in postgres, so concurrent inserts of the same
// key race on the index, not in application code; one of them surfaces here.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
