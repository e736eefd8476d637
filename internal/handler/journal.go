package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/semillita/semillita/internal/achievement"
	"github.com/semillita/semillita/internal/auth"
	"github.com/semillita/semillita/internal/store"
	"github.com/semillita/semillita/internal/websocket"
)

// pointsPerEntry is credited for every journal entry.
const pointsPerEntry = 10

type JournalHandler struct {
	journalStore *store.JournalStore
	emotionStore *store.EmotionStore
	plantStore   *store.PlantStore
	userStore    *store.UserStore
	evaluator    *achievement.Evaluator
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewJournalHandler(
	js *store.JournalStore,
	es *store.EmotionStore,
	ps *store.PlantStore,
	us *store.UserStore,
	ev *achievement.Evaluator,
	hub *websocket.Hub,
	logger *slog.Logger,
) *JournalHandler {
	return &JournalHandler{
		journalStore: js,
		emotionStore: es,
		plantStore:   ps,
		userStore:    us,
		evaluator:    ev,
		hub:          hub,
		logger:       logger,
	}
}

type createEntryRequest struct {
	EmotionID *int64 `json:"emotion_id"`
	Content   string `json:"content"`
	PhotoURL  string `json:"photo_url"`
	AudioURL  string `json:"audio_url"`
}

// Create records a journal entry for the authenticated user, credits entry
// points, and runs an achievement pass. The entry is attached to the user's
// active plant when one exists.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && req.EmotionID == nil && req.AudioURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entry needs an emotion, some words, or a recording"})
		return
	}

	if req.EmotionID != nil {
		emotion, err := h.emotionStore.GetByID(*req.EmotionID)
		if err != nil {
			h.logger.Error("lookup emotion", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create entry"})
			return
		}
		if emotion == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown emotion"})
			return
		}
	}

	userID := auth.UserID(r.Context())

	var plantID *int64
	plant, err := h.plantStore.GetActive(userID)
	if err != nil {
		h.logger.Error("get active plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create entry"})
		return
	}
	if plant != nil {
		plantID = &plant.ID
	}

	entry, err := h.journalStore.Create(userID, plantID, req.EmotionID, req.Content, req.PhotoURL, req.AudioURL, pointsPerEntry)
	if err != nil {
		h.logger.Error("create journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create entry"})
		return
	}

	if err := h.userStore.AddPoints(userID, pointsPerEntry); err != nil {
		h.logger.Error("credit entry points", "error", err, "user_id", userID)
	}

	awards, err := h.evaluator.EvaluateAndAward(userID)
	if err != nil {
		h.logger.Error("evaluate achievements after entry", "error", err, "user_id", userID)
	}

	h.hub.SendToUser(userID, websocket.NewMessage("journal", "created", entry.ID, nil))
	for _, a := range awards {
		h.hub.SendToUser(userID, websocket.NewMessage("achievement", "unlocked", a.AchievementID, map[string]any{
			"name":   a.Name,
			"icon":   a.Icon,
			"points": a.PointsAwarded,
		}))
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"entry":         entry,
		"points_earned": pointsPerEntry,
		"achievements":  awards,
	})
}

// List returns the authenticated user's journal entries, newest first.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.journalStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list journal entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list entries"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Delete removes one of the authenticated user's entries. Points already
// credited for the entry are not clawed back.
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	entry, err := h.journalStore.GetByID(id)
	if err != nil {
		h.logger.Error("get journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete entry"})
		return
	}
	if entry == nil || entry.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	if err := h.journalStore.Delete(id); err != nil {
		h.logger.Error("delete journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete entry"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
