// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielhkuo/sitetime/auth"
)

// TokenValidator resolves a raw bearer token to an identity.
type TokenValidator interface {
	Validate(raw string) (string, error)
}

type identityKey struct{}

// WithIdentity stores the acting identity on ctx.
func WithIdentity(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFrom returns the identity placed on ctx by RequireAuth.
func IdentityFrom(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(identityKey{}).(string)
	return user, ok && user != ""
}

// RequireAuth rejects requests without a valid bearer token with 403 and a
// message naming the cause. When allowQuery is set, a "token" query
// parameter is accepted if the Authorization header is absent; browsers
// cannot set headers on websocket upgrades.
func RequireAuth(v TokenValidator, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			var (
				raw string
				err error
			)
			if header == "" && allowQuery {
				raw = r.URL.Query().Get("token")
			} else {
				raw, err = auth.BearerToken(header)
			}

			var user string
			if err == nil {
				user, err = v.Validate(raw)
			}
			if err != nil {
				ErrorResponse(w, http.StatusForbidden, AuthMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user)))
		})
	}
}

// AuthMessage maps a token error to the message returned to clients.
func AuthMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		return "Token is missing!"
	case errors.Is(err, auth.ErrTokenExpired):
		return "Token has expired!"
	default:
		return "Token is invalid!"
	}
}
