package auth

import (
	"context"

	"reviewdesk/internal/domain"
)

// Identity is the resolved caller of a request. The zero value is anonymous.
type Identity struct {
	UserID   int
	Username string
	IsAdmin  bool
}

var Anonymous = Identity{}

func UserIdentity(u domain.User) Identity {
	return Identity{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// Role is the minimum privilege an operation requires.
type Role int

const (
	RoleAnyone Role = iota
	RoleMember
	RoleAdmin
)

// Authorize is the single access predicate for routes and workflow
// transitions alike.
func Authorize(id Identity, role Role) error {
	switch role {
	case RoleAnyone:
		return nil
	case RoleMember:
		if !id.Authenticated() {
			return domain.ErrUnauthenticated
		}
		return nil
	default:
		if !id.Authenticated() {
			return domain.ErrUnauthenticated
		}
		if !id.IsAdmin {
			return domain.ErrAccessDenied
		}
		return nil
	}
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// CurrentIdentity returns the caller stored in ctx, or Anonymous.
func CurrentIdentity(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
