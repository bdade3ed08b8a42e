// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/sitetime/filestore"
	"github.com/danielhkuo/sitetime/metrics"
	"github.com/danielhkuo/sitetime/middleware"
	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/realtime"
	"github.com/danielhkuo/sitetime/store"
)

const (
	multipartMemory = 8 << 20
	photoField      = "photo"
)

type PhotoHandler struct {
	store    *store.Store
	files    *filestore.Store
	notify   Notifier
	maxBytes int64
}

func NewPhotoHandler(s *store.Store, files *filestore.Store, n Notifier, maxBytes int64) *PhotoHandler {
	return &PhotoHandler{store: s, files: files, notify: n, maxBytes: maxBytes}
}

// Upload handles POST /upload_photo
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes {
		h.tooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(w)
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "No file part")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(photoField)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	project := r.FormValue("project")
	trimmed(&project)
	if project == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Project name is required")
		return
	}
	if header.Filename == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !h.files.Allowed(header.Filename) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "File type not allowed")
		return
	}
	if !filestore.ValidProject(project) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid project name")
		return
	}

	exists, err := h.store.ProjectExists(r.Context(), project)
	if err != nil {
		middleware.InternalError(w, r, "failed to look up project", err)
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Project not found")
		return
	}

	rel, n, err := h.files.Save(project, header.Filename, file)
	if err != nil {
		middleware.InternalError(w, r, "failed to store photo", err)
		return
	}

	added, err := h.store.AddPhoto(r.Context(), project, rel)
	if err != nil || !added {
		if rmErr := h.files.Remove(rel); rmErr != nil {
			slog.Warn("failed to clean up photo", "path", rel, "error", rmErr)
		}
		if err != nil {
			middleware.InternalError(w, r, "failed to record photo", err)
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Project not found")
		return
	}

	metrics.PhotoUploadBytes.Add(float64(n))
	slog.Info("photo uploaded", "by", actor(r), "project", project, "path", rel, "size", humanize.IBytes(uint64(n)))

	photos, err := h.store.ListPhotos(r.Context(), project)
	if err != nil {
		middleware.InternalError(w, r, "failed to list photos", err)
		return
	}
	h.notify.Notify(r.Context(), realtime.EventUpdateProjectPhotos, models.ProjectPhotosEvent{Project: project, Photos: photos})
	middleware.JSONResponse(w, http.StatusOK, models.UploadPhotoResponse{Status: models.StatusSuccess, Filename: rel})
}

func (h *PhotoHandler) tooLarge(w http.ResponseWriter) {
	middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File too large (limit %s)", humanize.IBytes(uint64(h.maxBytes))))
}

// List handles GET /project_photos/{project}
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.store.ListPhotos(r.Context(), r.PathValue("project"))
	if err != nil {
		middleware.InternalError(w, r, "failed to list photos", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.PhotosResponse{Photos: photos})
}

// Download handles GET /download_photo/{path...}
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	f, info, err := h.files.Open(r.PathValue("*"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(info.Name())))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
