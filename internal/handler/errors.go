package handler

import (
	"errors"
	"net/http"

	"reviewdesk/internal/domain"
	"reviewdesk/internal/logger"
	"reviewdesk/internal/models"
)

// appHandler is a handler whose failures are resolved by wrap.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// redirectError asks the boundary to redirect with a flash message.
type redirectError struct {
	Destination string
	Category    string
	Message     string
	Err         error
}

func (e *redirectError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *redirectError) Unwrap() error { return e.Err }

func redirectTo(dst, category, message string, err error) error {
	return &redirectError{Destination: dst, Category: category, Message: message, Err: err}
}

// classify maps domain errors onto the redirect a user sees. Unknown errors
// return nil and end as a 500.
func classify(r *http.Request, err error) *redirectError {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return &redirectError{Destination: "/login", Category: models.FlashWarning, Message: "Please log in to access this page.", Err: err}
	case errors.Is(err, domain.ErrAccessDenied):
		return &redirectError{Destination: "/", Category: models.FlashDanger, Message: "Access denied. Admin only area.", Err: err}
	case errors.Is(err, domain.ErrNotFound):
		return &redirectError{Destination: "/admin/", Category: models.FlashDanger, Message: "Review not found.", Err: err}
	case errors.Is(err, domain.ErrInvalidRating):
		return &redirectError{Destination: r.URL.Path, Category: models.FlashWarning, Message: "Rating must be a whole number from 1 to 5.", Err: err}
	case errors.Is(err, domain.ErrInvalidComment):
		return &redirectError{Destination: r.URL.Path, Category: models.FlashWarning, Message: "Comment is too long.", Err: err}
	default:
		return nil
	}
}

func (h *Handler) wrap(fn appHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		h.fail(w, r, err)
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var re *redirectError
	if !errors.As(err, &re) {
		re = classify(r, err)
	}
	if re == nil {
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger.Debugf("%s %s: redirect to %s: %v", r.Method, r.URL.Path, re.Destination, re)
	if re.Message != "" {
		h.flash(w, r, re.Category, re.Message)
	}
	http.Redirect(w, r, re.Destination, http.StatusFound)
}
