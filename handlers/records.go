// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/danielhkuo/sitetime/middleware"
	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/realtime"
	"github.com/danielhkuo/sitetime/store"
)

const maxRecordBody = 64 << 10

// nullable lists required record fields that may be sent as null.
var nullable = map[string]bool{"description": true}

type RecordHandler struct {
	store  *store.Store
	notify Notifier
}

func NewRecordHandler(s *store.Store, n Notifier) *RecordHandler {
	return &RecordHandler{store: s, notify: n}
}

// AddRecord handles POST /add_record
func (h *RecordHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Record too large")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if missing := firstMissing(fields); missing != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Field '%s' is missing", missing))
		return
	}

	var rec models.NewRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid record fields")
		return
	}

	added, err := h.store.AddRecord(r.Context(), &rec)
	if err != nil {
		middleware.InternalError(w, r, "failed to add record", err)
		return
	}
	if !added {
		// missing worker, missing project and duplicate id are not told apart
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to add record. Ensure worker and project exist.")
		return
	}

	slog.Info("record added", "by", actor(r), "record_id", rec.ID, "worker", rec.Worker, "project", rec.Project)
	h.notify.Notify(r.Context(), realtime.EventNewRecord, json.RawMessage(bytes.TrimSpace(raw)))
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: models.StatusSuccess, Message: "Record added"})
}

func firstMissing(fields map[string]json.RawMessage) string {
	for _, name := range models.RecordRequiredFields {
		v, ok := fields[name]
		if !ok || (!nullable[name] && bytes.Equal(bytes.TrimSpace(v), []byte("null"))) {
			return name
		}
	}
	return ""
}

// RemoveRecord handles DELETE /remove_record
func (h *RecordHandler) RemoveRecord(w http.ResponseWriter, r *http.Request) {
	var req models.RecordIDRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	trimmed(&req.ID)
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Record id is required")
		return
	}

	removed, err := h.store.RemoveRecord(r.Context(), req.ID)
	if err != nil {
		middleware.InternalError(w, r, "failed to remove record", err)
		return
	}
	if !removed {
		middleware.ErrorResponse(w, http.StatusNotFound, "Record not found")
		return
	}

	slog.Info("record removed", "by", actor(r), "record_id", req.ID)
	h.notify.Notify(r.Context(), realtime.EventUpdateRecords, models.RecordRemovedEvent{ID: req.ID})
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: models.StatusSuccess, Message: "Record removed"})
}

// ListAll handles GET /records_all
func (h *RecordHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ListByProject handles GET /records/{project}
func (h *RecordHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	if project == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Project name is required")
		return
	}
	h.list(w, r, project)
}

func (h *RecordHandler) list(w http.ResponseWriter, r *http.Request, project string) {
	records, err := h.store.ListRecords(r.Context(), project)
	if err != nil {
		middleware.InternalError(w, r, "failed to list records", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RecordsResponse{Records: records})
}

// ListUnsynced handles GET /records_unsynced
func (h *RecordHandler) ListUnsynced(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListUnsyncedRecords(r.Context())
	if err != nil {
		middleware.InternalError(w, r, "failed to list unsynced records", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RecordsResponse{Records: records})
}

// MarkSynced handles POST /mark_synced
func (h *RecordHandler) MarkSynced(w http.ResponseWriter, r *http.Request) {
	var req models.RecordIDRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	trimmed(&req.ID)
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Record id is required")
		return
	}

	found, err := h.store.MarkRecordSynced(r.Context(), req.ID)
	if err != nil {
		middleware.InternalError(w, r, "failed to mark record synced", err)
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Record not found")
		return
	}

	slog.Info("record marked synced", "by", actor(r), "record_id", req.ID)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: models.StatusSuccess})
}
