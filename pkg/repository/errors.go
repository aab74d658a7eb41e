package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// MapError converts driver errors into the caller's domain errors. A
// missing row, or a foreign key pointing at one (SQLSTATE 23503), becomes
// notFound; a unique violation (23505) becomes duplicate. Anything else is
// returned as is.
func MapError(err, notFound, duplicate error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok {
		switch pgErr.Code {
		case "23503":
			return notFound
		case "23505":
			return duplicate
		}
	}
	return err
}
