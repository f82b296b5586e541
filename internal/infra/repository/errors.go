package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgresのunique_violation
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}
