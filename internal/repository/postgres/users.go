package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"reviewdesk/internal/domain"
	"reviewdesk/pkg/database"
)

type UserStore struct {
	db *database.DB
}

func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts u and fills its ID and CreatedAt. Username is checked
// before email so the caller sees the same conflict order as the form.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	err := s.db.Pipe(ctx, nil, func(tx *sql.Tx) error {
		if err := checkDuplicates(ctx, tx, u.Username, u.Email); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`INSERT INTO users (username, email, password_hash, is_admin)
			 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			u.Username, u.Email, u.PasswordHash, u.IsAdmin,
		).Scan(&u.ID, &u.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

// EnsureAdmin creates u as an administrator unless a user with the same
// email already exists. It reports whether a row was inserted.
func (s *UserStore) EnsureAdmin(ctx context.Context, u *domain.User) (bool, error) {
	created := false
	err := s.db.Pipe(ctx, nil, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, u.Email,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		u.IsAdmin = true
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO users (username, email, password_hash, is_admin)
			 VALUES ($1, $2, $3, TRUE) RETURNING id, created_at`,
			u.Username, u.Email, u.PasswordHash,
		).Scan(&u.ID, &u.CreatedAt); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", translate(err))
	}
	return created, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int) (domain.User, error) {
	return s.getOne(ctx, `WHERE id = $1`, id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getOne(ctx, `WHERE email = $1`, email)
}

// CountMembers counts non-admin users.
func (s *UserStore) CountMembers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_admin = FALSE`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func (s *UserStore) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, is_admin, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", translate(err))
	}
	return u, nil
}

func checkDuplicates(ctx context.Context, tx *sql.Tx, username, email string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateUsername
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateEmail
	}
	return nil
}
