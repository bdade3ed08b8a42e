// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	r.Use(middleware.WithLogging)

Logs one line per request on completion (method, path, status, bytes,
remote, duration_ms, request_id). 5xx logs at error, 4xx at warn.

# Metrics

	r.Use(middleware.Metrics)

Counts requests and observes latency per chi route pattern.

# Authentication

	r.Use(middleware.RequireAuth(tokens, false))

Rejects requests without a valid bearer token with 403 and one of
"Token is missing!", "Token has expired!" or "Token is invalid!". A header
that is not "Bearer <token>" counts as missing.

The identity from the token (a worker name or "mobile_app") is handed to
the next handler on the request context. IdentityFrom(r.Context()) is the
only way to read it; handlers log it with each mutation and the websocket
endpoint tags its client with it.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.InternalError(w, r, "failed to list workers", err)

	var req models.WorkerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
