// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/testutil"
)

func TestLogin(t *testing.T) {
	s := testutil.SetupTestStore(t)
	tokens := testutil.NewTokenManager(t)
	testutil.CreateTestWorker(t, s, "Alice")
	h := NewAuthHandler(s, tokens)

	testCases := []struct {
		name           string
		body           any
		expectedStatus int
		expectedMsg    string
	}{
		{"registered worker", map[string]string{"name": "Alice"}, http.StatusOK, ""},
		{"unregistered worker", map[string]string{"name": "Bob"}, http.StatusNotFound, "Worker not found"},
		{"missing name", map[string]string{}, http.StatusBadRequest, "Name is required"},
		{"blank name", map[string]string{"name": "   "}, http.StatusBadRequest, "Name is required"},
		{"invalid json", "{nope", http.StatusBadRequest, "Invalid JSON"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Login(w, testutil.MakeRequest("POST", "/login", tc.body, nil))

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus == http.StatusOK {
				var resp models.TokenResponse
				testutil.AssertJSON(t, w, &resp)
				user, err := tokens.Validate(resp.Token)
				if err != nil {
					t.Fatalf("issued token did not validate: %v", err)
				}
				if user != "Alice" {
					t.Errorf("Expected identity 'Alice', got '%s'", user)
				}
				return
			}
			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != tc.expectedMsg {
				t.Errorf("Expected message '%s', got '%s'", tc.expectedMsg, resp.Message)
			}
		})
	}
}

func TestGetToken(t *testing.T) {
	s := testutil.SetupTestStore(t)
	tokens := testutil.NewTokenManager(t)
	if _, err := s.AddAPIKey(context.Background(), "key-123", "tablet"); err != nil {
		t.Fatalf("Failed to add api key: %v", err)
	}
	h := NewAuthHandler(s, tokens)

	testCases := []struct {
		name           string
		key            string
		expectedStatus int
		expectedMsg    string
	}{
		{"valid key", "key-123", http.StatusOK, ""},
		{"missing key", "", http.StatusBadRequest, "API key is missing!"},
		{"unknown key", "key-999", http.StatusForbidden, "Invalid API key!"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.key != "" {
				headers["x-api-key"] = tc.key
			}
			w := httptest.NewRecorder()
			h.GetToken(w, testutil.MakeRequest("POST", "/get_token", nil, headers))

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus == http.StatusOK {
				var resp models.TokenResponse
				testutil.AssertJSON(t, w, &resp)
				user, err := tokens.Validate(resp.Token)
				if err != nil {
					t.Fatalf("issued token did not validate: %v", err)
				}
				if user != models.ServiceIdentity {
					t.Errorf("Expected identity '%s', got '%s'", models.ServiceIdentity, user)
				}
				return
			}
			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != tc.expectedMsg {
				t.Errorf("Expected message '%s', got '%s'", tc.expectedMsg, resp.Message)
			}
		})
	}
}
