// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/sitetime/middleware"
	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/syncer"
)

// PhotoForwarder runs one pass over the pending photo queue.
type PhotoForwarder interface {
	Run(ctx context.Context) (syncer.Result, error)
}

type SyncHandler struct {
	photos PhotoForwarder
}

// NewSyncHandler accepts a nil forwarder when forwarding is not configured.
func NewSyncHandler(photos PhotoForwarder) *SyncHandler {
	return &SyncHandler{photos: photos}
}

// ProcessPhotos handles POST /process_photos
func (h *SyncHandler) ProcessPhotos(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Photo forwarding is not configured")
		return
	}

	res, err := h.photos.Run(r.Context())
	if err != nil {
		middleware.InternalError(w, r, "photo forwarding pass failed", err)
		return
	}

	resp := models.ProcessPhotosResponse{
		Status:         models.StatusSuccess,
		ProcessedFiles: res.Processed,
		Forwarded:      res.Forwarded,
		Failed:         res.Failed,
	}
	if res.Processed == 0 {
		resp.Message = "No files to process"
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
