package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username string `validate:"required,min=2,max=64"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,bcryptlen"`
}

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Accounts registers and authenticates users.
type Accounts struct {
	users UserStore
}

func NewAccounts(users UserStore) *Accounts {
	return &Accounts{users: users}
}

func (a *Accounts) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateForm(in); err != nil {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return domain.User{}, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidForm, maxPasswordBytes)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := a.users.Create(ctx, &u); err != nil {
		return domain.User{}, err
	}
	logger.Infof("user registered: %s (id %d)", u.Username, u.ID)
	return u, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (a *Accounts) Authenticate(ctx context.Context, in LoginInput) (domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateForm(in); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	u, err := a.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warnf("login failed: unknown email")
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if !auth.CheckPassword(in.Password, u.PasswordHash) {
		logger.Warnf("login failed: bad password for user %d", u.ID)
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u, nil
}

// Lookup loads the user behind a session token.
func (a *Accounts) Lookup(ctx context.Context, id int) (domain.User, error) {
	return a.users.GetByID(ctx, id)
}

// SeedAdmin creates the default administrator when no user owns its email.
func (a *Accounts) SeedAdmin(ctx context.Context, username, email, password string) (bool, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{Username: username, Email: strings.ToLower(email), PasswordHash: hash}
	created, err := a.users.EnsureAdmin(ctx, &u)
	if err != nil {
		return false, err
	}
	if created {
		logger.Infof("default administrator created: %s (id %d)", u.Username, u.ID)
	}
	return created, nil
}
