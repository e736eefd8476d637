package handler

import (
	"log/slog"
	"net/http"

	"github.com/semillita/semillita/internal/store"
)

type EmotionHandler struct {
	emotionStore *store.EmotionStore
	logger       *slog.Logger
}

func NewEmotionHandler(es *store.EmotionStore, logger *slog.Logger) *EmotionHandler {
	return &EmotionHandler{emotionStore: es, logger: logger}
}

// List returns the emotion palette.
func (h *EmotionHandler) List(w http.ResponseWriter, r *http.Request) {
	emotions, err := h.emotionStore.List()
	if err != nil {
		h.logger.Error("list emotions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list emotions"})
		return
	}
	writeJSON(w, http.StatusOK, emotions)
}
