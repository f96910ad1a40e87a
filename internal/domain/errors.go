package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRating      = errors.New("rating must be an integer between 1 and 5")
	ErrInvalidComment     = errors.New("comment is too long")
	ErrInvalidForm        = errors.New("invalid form")
)
