package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/semillita/semillita/internal/media"
)

// maxUploadBytes caps photo and audio uploads at 10 MB.
const maxUploadBytes = 10 << 20

var allowedUploadKinds = map[string]bool{
	"photos": true,
	"audio":  true,
}

type MediaHandler struct {
	mediaStore *media.Store
	logger     *slog.Logger
}

func NewMediaHandler(ms *media.Store, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{mediaStore: ms, logger: logger}
}

// Upload stores a photo or audio clip and returns the key to reference it
// from a journal entry or plant.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !allowedUploadKinds[kind] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be photos or audio"})
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Content-Type is required"})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large"})
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty upload"})
		return
	}

	key, err := h.mediaStore.Put(r.Context(), kind, contentType, data)
	if errors.Is(err, media.ErrDisabled) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "media storage is not configured"})
		return
	}
	if err != nil {
		h.logger.Error("upload media", "error", err, "kind", kind)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"key": key,
		"url": "/api/media/" + key,
	})
}

// Get streams a stored object back to the client.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" || strings.Contains(key, "..") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid media key"})
		return
	}

	data, contentType, err := h.mediaStore.Get(r.Context(), key)
	if errors.Is(err, media.ErrDisabled) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "media storage is not configured"})
		return
	}
	if errors.Is(err, media.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media not found"})
		return
	}
	if err != nil {
		h.logger.Error("get media", "error", err, "key", key)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get media"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(data)
}
