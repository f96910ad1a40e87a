package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reviewdesk/internal/domain"

	"github.com/go-playground/validator/v10"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	EnsureAdmin(ctx context.Context, u *domain.User) (bool, error)
	GetByID(ctx context.Context, id int) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	CountMembers(ctx context.Context) (int, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, f *domain.Feedback) error
	Get(ctx context.Context, id int) (domain.Feedback, error)
	List(ctx context.Context, filter domain.Filter) ([]domain.Feedback, error)
	Update(ctx context.Context, id int, upd func(f *domain.Feedback) error) error
	Delete(ctx context.Context, id int) error
	AverageRating(ctx context.Context, filter domain.Filter) (float64, error)
}

// bcrypt only looks at the first 72 bytes, and rune-counting max would let a
// multi-byte password past.
const maxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	}); err != nil {
		panic(err)
	}
	return v
}

// validateForm runs struct tag validation and folds the failures into one
// ErrInvalidForm with a readable message.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidForm, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "bcryptlen":
		return fmt.Sprintf("%s must be at most %d bytes", field, maxPasswordBytes)
	default:
		return field + " is invalid"
	}
}
