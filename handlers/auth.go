// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/sitetime/auth"
	"github.com/danielhkuo/sitetime/middleware"
	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/store"
)

// APIKeyHeader carries the pre-shared key for POST /get_token.
const APIKeyHeader = "X-Api-Key"

type AuthHandler struct {
	store  *store.Store
	tokens *auth.Manager
}

func NewAuthHandler(s *store.Store, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{store: s, tokens: tokens}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	trimmed(&req.Name)
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}

	exists, err := h.store.WorkerExists(r.Context(), req.Name)
	if err != nil {
		middleware.InternalError(w, r, "failed to look up worker", err)
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Worker not found")
		return
	}

	token, err := h.tokens.IssueForWorker(req.Name)
	if err != nil {
		middleware.InternalError(w, r, "failed to issue token", err)
		return
	}

	slog.Info("worker logged in", "worker", req.Name)
	middleware.JSONResponse(w, http.StatusOK, models.TokenResponse{Token: token})
}

// GetToken handles POST /get_token
func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "API key is missing!")
		return
	}

	ok, err := h.store.VerifyAPIKey(r.Context(), key)
	if err != nil {
		middleware.InternalError(w, r, "failed to verify api key", err)
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid API key!")
		return
	}

	token, err := h.tokens.IssueForService()
	if err != nil {
		middleware.InternalError(w, r, "failed to issue token", err)
		return
	}

	slog.Info("service token issued", "identity", models.ServiceIdentity)
	middleware.JSONResponse(w, http.StatusOK, models.TokenResponse{Token: token})
}
