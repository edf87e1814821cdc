package apierr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is the sentinel for missing resources on the read path.
	// On the write path absence of a match is a legitimate outcome, not an
	// error; the resolver signals it through its return value instead.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is the sentinel for API key failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is the sentinel for unparseable input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ReferentialError marks a nested reference (committee, author, document id)
// that could not be resolved or created. The whole submission rolls back.
type ReferentialError struct {
	Ref string
	Err error
}

func (e *ReferentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unresolvable reference %s: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("unresolvable reference %s", e.Ref)
}

func (e *ReferentialError) Unwrap() error { return e.Err }

// ConflictError marks a storage serialization failure that survived the
// bounded retry of the write coordinator.
type ConflictError struct {
	Attempts int
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("submission conflicted %d times: %v", e.Attempts, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// IsSerializationFailure reports whether err is a Postgres serialization or
// deadlock failure, the signal for one more submission attempt.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// IsConstraintViolation reports whether err is a Postgres integrity
// constraint violation (class 23), surfaced as ReferentialError upstream.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "23"
	}
	return false
}
