package handler

import (
	"errors"
	"net/http"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/logger"

	"github.com/gorilla/mux"
)

// identify resolves the caller from the session token and stores the
// identity in the request context. The user is re-read so a revoked admin
// flag or a removed account takes effect immediately.
func (h *Handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.tokens.Validate(token)
		if err != nil {
			logger.Debugf("identify: %v", err)
			auth.ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.accounts.Lookup(r.Context(), claims.UserID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			auth.ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		case err != nil:
			logger.Errorf("identify: load user %d: %v", claims.UserID, err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.WithIdentity(r.Context(), auth.UserIdentity(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// require guards a route group with auth.Authorize.
func (h *Handler) require(role auth.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.CurrentIdentity(r.Context())
			if err := auth.Authorize(id, role); err != nil {
				logger.Warnf("%s %s denied for user %d: %v", r.Method, r.URL.Path, id.UserID, err)
				h.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
