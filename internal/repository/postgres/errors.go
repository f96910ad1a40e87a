package postgres

import (
	"database/sql"
	"errors"

	"reviewdesk/internal/domain"

	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// translate maps driver errors onto domain errors and leaves the rest untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		switch pqErr.Constraint {
		case "users_username_key":
			return domain.ErrDuplicateUsername
		case "users_email_key":
			return domain.ErrDuplicateEmail
		}
	case foreignKeyViolation:
		return domain.ErrNotFound
	case checkViolation:
		if pqErr.Constraint == "feedback_rating_check" {
			return domain.ErrInvalidRating
		}
	}
	return err
}
