// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/sitetime/middleware"
	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/realtime"
	"github.com/danielhkuo/sitetime/store"
)

// EntityHandler serves the worker and project lists.
type EntityHandler struct {
	store  *store.Store
	notify Notifier
}

func NewEntityHandler(s *store.Store, n Notifier) *EntityHandler {
	return &EntityHandler{store: s, notify: n}
}

// ListWorkers handles GET /workers
func (h *EntityHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.store.ListWorkers(r.Context())
	if err != nil {
		middleware.InternalError(w, r, "failed to list workers", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.WorkersResponse{Status: models.StatusSuccess, Workers: workers})
}

// AddWorker handles POST /add_worker
func (h *EntityHandler) AddWorker(w http.ResponseWriter, r *http.Request) {
	var req models.WorkerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	trimmed(&req.Worker)
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Worker name is required")
		return
	}

	// The unique index is authoritative; this only gives the common case
	// its message without opening a transaction.
	exists, err := h.store.WorkerExists(r.Context(), req.Worker)
	if err != nil {
		middleware.InternalError(w, r, "failed to look up worker", err)
		return
	}
	added := false
	if !exists {
		added, err = h.store.AddWorker(r.Context(), req.Worker)
		if err != nil {
			middleware.InternalError(w, r, "failed to add worker", err)
			return
		}
	}
	if !added {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Worker already exists")
		return
	}

	slog.Info("worker added", "by", actor(r), "worker", req.Worker)
	h.respondWorkers(w, r)
}

// RemoveWorker handles DELETE /remove_worker
func (h *EntityHandler) RemoveWorker(w http.ResponseWriter, r *http.Request) {
	var req models.WorkerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	trimmed(&req.Worker)
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Worker name is required")
		return
	}

	removed, err := h.store.RemoveWorker(r.Context(), req.Worker)
	if err != nil {
		middleware.InternalError(w, r, "failed to remove worker", err)
		return
	}
	if !removed {
		middleware.ErrorResponse(w, http.StatusNotFound, "Worker not found")
		return
	}

	slog.Info("worker removed", "by", actor(r), "worker", req.Worker)
	h.respondWorkers(w, r)
}

func (h *EntityHandler) respondWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.store.ListWorkers(r.Context())
	if err != nil {
		middleware.InternalError(w, r, "failed to list workers", err)
		return
	}
	h.notify.Notify(r.Context(), realtime.EventUpdateWorkers, workers)
	middleware.JSONResponse(w, http.StatusOK, models.WorkersResponse{Status: models.StatusSuccess, Workers: workers})
}

// ListProjects handles GET /projects
func (h *EntityHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		middleware.InternalError(w, r, "failed to list projects", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ProjectsResponse{Status: models.StatusSuccess, Projects: projects})
}

// AddProject handles POST /add_project
func (h *EntityHandler) AddProject(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	trimmed(&req.Project)
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Project name is required")
		return
	}

	exists, err := h.store.ProjectExists(r.Context(), req.Project)
	if err != nil {
		middleware.InternalError(w, r, "failed to look up project", err)
		return
	}
	added := false
	if !exists {
		added, err = h.store.AddProject(r.Context(), req.Project)
		if err != nil {
			middleware.InternalError(w, r, "failed to add project", err)
			return
		}
	}
	if !added {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Project already exists")
		return
	}

	slog.Info("project added", "by", actor(r), "project", req.Project)
	h.respondProjects(w, r)
}

// RemoveProject handles DELETE /remove_project
func (h *EntityHandler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	trimmed(&req.Project)
	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Project name is required")
		return
	}

	removed, err := h.store.RemoveProject(r.Context(), req.Project)
	if err != nil {
		middleware.InternalError(w, r, "failed to remove project", err)
		return
	}
	if !removed {
		middleware.ErrorResponse(w, http.StatusNotFound, "Project not found")
		return
	}

	slog.Info("project removed", "by", actor(r), "project", req.Project)
	h.respondProjects(w, r)
}

func (h *EntityHandler) respondProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		middleware.InternalError(w, r, "failed to list projects", err)
		return
	}
	h.notify.Notify(r.Context(), realtime.EventUpdateProjects, projects)
	middleware.JSONResponse(w, http.StatusOK, models.ProjectsResponse{Status: models.StatusSuccess, Projects: projects})
}
