// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/danielhkuo/sitetime/auth"
	"github.com/danielhkuo/sitetime/cliparse"
	"github.com/danielhkuo/sitetime/db"
	"github.com/danielhkuo/sitetime/store"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-0123456789abcdef"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// API keys are not seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseConfig{Driver: cliparse.DriverSQLite, URL: ":memory:"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

// SetupTestStore wraps SetupTestDB in a store.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t))
}

// GetTestConfig returns a configuration that passes validation, with uploads
// in a per-test temp dir.
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Server:   cliparse.ServerConfig{Port: 5000},
		Database: cliparse.DatabaseConfig{Driver: cliparse.DriverSQLite, URL: ":memory:"},
		Auth:     cliparse.AuthConfig{Secret: TestSecret},
		Uploads: cliparse.UploadsConfig{
			Dir:               t.TempDir(),
			MaxSize:           "16MB",
			AllowedExtensions: []string{"png", "jpg", "jpeg", "gif"},
		},
		CORS: cliparse.CORSConfig{AllowedOrigins: []string{"*"}},
		Log:  cliparse.LogConfig{Level: "info", Format: "json"},
	}
}

// NewTokenManager returns a manager using TestSecret.
func NewTokenManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager(TestSecret)
	if err != nil {
		t.Fatalf("Failed to create token manager: %v", err)
	}
	return m
}

// IssueTestToken returns a bearer header value for user.
func IssueTestToken(t *testing.T, m *auth.Manager, user string) string {
	t.Helper()
	token, err := m.IssueForWorker(user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return "Bearer " + token
}

// CreateTestWorker adds a worker directly through the store
func CreateTestWorker(t *testing.T, s *store.Store, name string) {
	t.Helper()
	ok, err := s.AddWorker(context.Background(), name)
	if err != nil || !ok {
		t.Fatalf("Failed to create test worker %q: ok=%v err=%v", name, ok, err)
	}
}

// CreateTestProject adds a project directly through the store
func CreateTestProject(t *testing.T, s *store.Store, name string) {
	t.Helper()
	ok, err := s.AddProject(context.Background(), name)
	if err != nil || !ok {
		t.Fatalf("Failed to create test project %q: ok=%v err=%v", name, ok, err)
	}
}

// Event is one notification captured by RecordingNotifier.
type Event struct {
	Name string
	Data any
}

// RecordingNotifier captures notifications instead of broadcasting them.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *RecordingNotifier) Notify(_ context.Context, event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Event{Name: event, Data: data})
}

// Events returns a copy of everything captured so far.
func (n *RecordingNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

// Last returns the most recent event, failing the test if there is none.
func (n *RecordingNotifier) Last(t *testing.T) Event {
	t.Helper()
	events := n.Events()
	if len(events) == 0 {
		t.Fatal("Expected at least one notification")
	}
	return events[len(events)-1]
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		case []byte:
			raw = b
		default:
			raw, _ = json.Marshal(body)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
