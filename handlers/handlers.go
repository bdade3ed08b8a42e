// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/sitetime/middleware"
)

// Notifier pushes change events to realtime clients. Implementations must
// not block and must not fail the caller.
type Notifier interface {
	Notify(ctx context.Context, event string, data any)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// actor returns the identity RequireAuth resolved for r, or "" on open routes.
func actor(r *http.Request) string {
	user, _ := middleware.IdentityFrom(r.Context())
	return user
}

// trimmed strips surrounding whitespace from s in place.
func trimmed(s *string) {
	*s = strings.TrimSpace(*s)
}
