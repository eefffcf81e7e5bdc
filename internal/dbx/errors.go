package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// uniqueViolation is the SQLSTATE Postgres reports for a duplicate key.
	uniqueViolation = "23505"
	// invalidTextRepresentation is raised when a parameter does not parse
	// as the column type, e.g. "abc" compared with a uuid column.
	invalidTextRepresentation = "22P02"
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolation reports whether err carries a Postgres unique-violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// IsInvalidTextRepresentation reports whether Postgres rejected a parameter
// as malformed for its column type. Repositories looking rows up by a
// client-supplied id treat it as "no such row".
func IsInvalidTextRepresentation(err error) bool {
	return hasCode(err, invalidTextRepresentation)
}
