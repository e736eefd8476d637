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

type PlantHandler struct {
	plantStore *store.PlantStore
	evaluator  *achievement.Evaluator
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewPlantHandler(ps *store.PlantStore, ev *achievement.Evaluator, hub *websocket.Hub, logger *slog.Logger) *PlantHandler {
	return &PlantHandler{plantStore: ps, evaluator: ev, hub: hub, logger: logger}
}

type createPlantRequest struct {
	Name string `json:"name"`
}

// Create plants a new seed for the authenticated user. Any previous active
// plant is retired.
func (h *PlantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	userID := auth.UserID(r.Context())
	plant, err := h.plantStore.Create(userID, req.Name)
	if err != nil {
		h.logger.Error("create plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create plant"})
		return
	}

	awards, err := h.evaluator.EvaluateAndAward(userID)
	if err != nil {
		h.logger.Error("evaluate achievements after plant create", "error", err, "user_id", userID)
	}

	h.hub.SendToUser(userID, websocket.NewMessage("plant", "created", plant.ID, nil))
	h.notifyAwards(userID, awards)

	writeJSON(w, http.StatusCreated, map[string]any{
		"plant":        plant,
		"achievements": awards,
	})
}

// GetActive returns the authenticated user's current plant, or 404 if none.
func (h *PlantHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	plant, err := h.plantStore.GetActive(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get active plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get plant"})
		return
	}
	if plant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active plant"})
		return
	}
	writeJSON(w, http.StatusOK, plant)
}

type updatePlantRequest struct {
	Status   string `json:"status"`
	PhotoURL string `json:"photo_url"`
}

// Update changes the active plant's status or photo.
func (h *PlantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plant ID"})
		return
	}

	var req updatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	plant, err := h.plantStore.GetByID(id)
	if err != nil {
		h.logger.Error("get plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update plant"})
		return
	}
	if plant == nil || plant.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plant not found"})
		return
	}

	if req.Status != "" {
		if plant, err = h.plantStore.UpdateStatus(id, req.Status); err != nil {
			h.logger.Error("update plant status", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update plant"})
			return
		}
	}
	if req.PhotoURL != "" {
		if plant, err = h.plantStore.UpdatePhoto(id, req.PhotoURL); err != nil {
			h.logger.Error("update plant photo", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update plant"})
			return
		}
	}

	writeJSON(w, http.StatusOK, plant)
}

func (h *PlantHandler) notifyAwards(userID int64, awards []achievement.Award) {
	for _, a := range awards {
		h.hub.SendToUser(userID, websocket.NewMessage("achievement", "unlocked", a.AchievementID, map[string]any{
			"name":   a.Name,
			"icon":   a.Icon,
			"points": a.PointsAwarded,
		}))
	}
}
