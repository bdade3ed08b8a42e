// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/syncer"
	"github.com/danielhkuo/sitetime/testutil"
)

type stubForwarder struct {
	res syncer.Result
	err error
}

func (s stubForwarder) Run(context.Context) (syncer.Result, error) {
	return s.res, s.err
}

func TestProcessPhotos(t *testing.T) {
	testCases := []struct {
		name      string
		forwarder PhotoForwarder
		status    int
		message   string
		forwarded int
	}{
		{"not configured", nil, http.StatusServiceUnavailable, "Photo forwarding is not configured", 0},
		{"empty queue", stubForwarder{}, http.StatusOK, "No files to process", 0},
		{"forwarded", stubForwarder{res: syncer.Result{Processed: 3, Forwarded: 2, Failed: 1}}, http.StatusOK, "", 2},
		{"queue unreadable", stubForwarder{err: errors.New("disk gone")}, http.StatusInternalServerError, "Internal server error", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSyncHandler(tc.forwarder)
			w := httptest.NewRecorder()
			h.ProcessPhotos(w, testutil.MakeRequest("POST", "/process_photos", nil, nil))
			testutil.AssertStatus(t, w, tc.status)

			if tc.status != http.StatusOK {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Message != tc.message {
					t.Errorf("Expected '%s', got '%s'", tc.message, resp.Message)
				}
				return
			}

			var resp models.ProcessPhotosResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
			if resp.Forwarded != tc.forwarded {
				t.Errorf("Expected %d forwarded, got %d", tc.forwarded, resp.Forwarded)
			}
		})
	}
}
