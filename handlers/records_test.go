// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/realtime"
	"github.com/danielhkuo/sitetime/store"
	"github.com/danielhkuo/sitetime/testutil"
)

func validRecord() map[string]any {
	return map[string]any{
		"id":          "rec-1",
		"worker":      "Alice",
		"project":     "Site1",
		"date":        "2024-05-01",
		"start_time":  "07:00",
		"break_start": "12:00",
		"break_end":   "12:30",
		"end_time":    "15:30",
		"hours":       8.0,
		"description": "framing",
	}
}

func setupRecords(t *testing.T) (*RecordHandler, *store.Store, *testutil.RecordingNotifier) {
	t.Helper()
	s := testutil.SetupTestStore(t)
	testutil.CreateTestWorker(t, s, "Alice")
	testutil.CreateTestProject(t, s, "Site1")
	n := &testutil.RecordingNotifier{}
	return NewRecordHandler(s, n), s, n
}

func listAll(t *testing.T, h *RecordHandler) []models.Record {
	t.Helper()
	w := httptest.NewRecorder()
	h.ListAll(w, testutil.MakeRequest("GET", "/records_all", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.RecordsResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.Records
}

func TestAddRecord_Success(t *testing.T) {
	h, _, n := setupRecords(t)

	w := httptest.NewRecorder()
	h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", validRecord(), nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.StatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != "success" {
		t.Errorf("Expected status success, got %s", resp.Status)
	}

	ev := n.Last(t)
	if ev.Name != realtime.EventNewRecord {
		t.Fatalf("Expected new_record, got %s", ev.Name)
	}
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		t.Fatalf("Failed to encode event data: %v", err)
	}
	var echoed map[string]any
	if err := json.Unmarshal(raw, &echoed); err != nil {
		t.Fatalf("Event data is not the submitted object: %v", err)
	}
	if echoed["worker"] != "Alice" || echoed["id"] != "rec-1" {
		t.Errorf("Expected submitted payload, got %v", echoed)
	}

	records := listAll(t, h)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Worker != "Alice" || records[0].Project != "Site1" || records[0].Synced {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestAddRecord_MissingFields(t *testing.T) {
	h, _, _ := setupRecords(t)

	testCases := []struct {
		name    string
		mutate  func(map[string]any)
		message string
	}{
		{"missing worker", func(m map[string]any) { delete(m, "worker") }, "Field 'worker' is missing"},
		{"missing hours", func(m map[string]any) { delete(m, "hours") }, "Field 'hours' is missing"},
		{"first missing wins", func(m map[string]any) { delete(m, "end_time"); delete(m, "date") }, "Field 'date' is missing"},
		{"missing description", func(m map[string]any) { delete(m, "description") }, "Field 'description' is missing"},
		{"null project", func(m map[string]any) { m["project"] = nil }, "Field 'project' is missing"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := validRecord()
			tc.mutate(body)

			w := httptest.NewRecorder()
			h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", body, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != tc.message {
				t.Errorf("Expected '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}

	if n := len(listAll(t, h)); n != 0 {
		t.Errorf("Expected no records, got %d", n)
	}
}

func TestAddRecord_NullDescriptionAllowed(t *testing.T) {
	h, _, _ := setupRecords(t)
	body := validRecord()
	body["description"] = nil
	delete(body, "id")

	w := httptest.NewRecorder()
	h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", body, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	records := listAll(t, h)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].ID == "" {
		t.Error("Expected a generated id")
	}
	if records[0].Description != nil {
		t.Errorf("Expected null description, got %q", *records[0].Description)
	}
}

func TestAddRecord_CollapsedFailure(t *testing.T) {
	h, _, n := setupRecords(t)

	w := httptest.NewRecorder()
	h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", validRecord(), nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	testCases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"unknown project", func(m map[string]any) { m["id"] = "rec-2"; m["project"] = "Site9" }},
		{"unknown worker", func(m map[string]any) { m["id"] = "rec-3"; m["worker"] = "Bob" }},
		{"duplicate id", func(map[string]any) {}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := validRecord()
			tc.mutate(body)

			w := httptest.NewRecorder()
			h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", body, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != "Failed to add record. Ensure worker and project exist." {
				t.Errorf("Unexpected message '%s'", resp.Message)
			}
		})
	}

	if got := len(listAll(t, h)); got != 1 {
		t.Errorf("Expected store unchanged with 1 record, got %d", got)
	}
	if got := len(n.Events()); got != 1 {
		t.Errorf("Expected only the first add to notify, got %d events", got)
	}
}

func TestAddRecord_BadPayload(t *testing.T) {
	h, _, _ := setupRecords(t)

	testCases := []struct {
		name    string
		body    any
		message string
	}{
		{"not json", "{", "Invalid JSON"},
		{"array", "[]", "Invalid JSON"},
		{"null", "null", "Invalid JSON"},
		{"hours not a number", func() map[string]any { m := validRecord(); m["hours"] = "eight"; return m }(), "Invalid record fields"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", tc.body, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != tc.message {
				t.Errorf("Expected '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestRemoveRecord(t *testing.T) {
	h, _, n := setupRecords(t)
	w := httptest.NewRecorder()
	h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", validRecord(), nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	h.RemoveRecord(w, testutil.MakeRequest("DELETE", "/remove_record", map[string]string{"id": "rec-1"}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	ev := n.Last(t)
	if ev.Name != realtime.EventUpdateRecords {
		t.Errorf("Expected update_records, got %s", ev.Name)
	}
	if got, ok := ev.Data.(models.RecordRemovedEvent); !ok || got.ID != "rec-1" {
		t.Errorf("Unexpected event data %+v", ev.Data)
	}

	w = httptest.NewRecorder()
	h.RemoveRecord(w, testutil.MakeRequest("DELETE", "/remove_record", map[string]string{"id": "rec-1"}, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	h.RemoveRecord(w, testutil.MakeRequest("DELETE", "/remove_record", map[string]string{}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestListByProject(t *testing.T) {
	h, s, _ := setupRecords(t)
	testutil.CreateTestProject(t, s, "Site2")

	for i, project := range []string{"Site1", "Site2", "Site1"} {
		body := validRecord()
		body["id"] = string(rune('a' + i))
		body["project"] = project
		w := httptest.NewRecorder()
		h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", body, nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	testCases := []struct {
		project string
		want    int
	}{
		{"Site1", 2},
		{"Site2", 1},
		{"Nowhere", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.project, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/records/"+tc.project, nil, nil)
			req.SetPathValue("project", tc.project)
			w := httptest.NewRecorder()
			h.ListByProject(w, req)
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.RecordsResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Records) != tc.want {
				t.Errorf("Expected %d records, got %d", tc.want, len(resp.Records))
			}
			if resp.Records == nil {
				t.Error("Expected a list, got null")
			}
		})
	}
}

func TestUnsyncedAndMarkSynced(t *testing.T) {
	h, _, _ := setupRecords(t)
	for _, id := range []string{"r1", "r2"} {
		body := validRecord()
		body["id"] = id
		w := httptest.NewRecorder()
		h.AddRecord(w, testutil.MakeRequest("POST", "/add_record", body, nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	for range 2 {
		w := httptest.NewRecorder()
		h.MarkSynced(w, testutil.MakeRequest("POST", "/mark_synced", map[string]string{"id": "r1"}, nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	w := httptest.NewRecorder()
	h.MarkSynced(w, testutil.MakeRequest("POST", "/mark_synced", map[string]string{"id": "missing"}, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	h.ListUnsynced(w, testutil.MakeRequest("GET", "/records_unsynced", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.RecordsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Records) != 1 || resp.Records[0].ID != "r2" {
		t.Errorf("Expected only r2 unsynced, got %+v", resp.Records)
	}
}
