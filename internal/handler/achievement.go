package handler

import (
	"log/slog"
	"net/http"

	"github.com/semillita/semillita/internal/auth"
	"github.com/semillita/semillita/internal/store"
)

type AchievementHandler struct {
	achievementStore *store.AchievementStore
	logger           *slog.Logger
}

func NewAchievementHandler(as *store.AchievementStore, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{achievementStore: as, logger: logger}
}

// List returns the active catalog with an earned flag for the
// authenticated user.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.achievementStore.ListActive()
	if err != nil {
		h.logger.Error("list achievements", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list achievements"})
		return
	}

	earned, err := h.achievementStore.ListEarnedIDs(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list earned achievement ids", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list achievements"})
		return
	}

	type item struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		Description    string `json:"description"`
		Icon           string `json:"icon"`
		PointsRequired int    `json:"points_required"`
		Earned         bool   `json:"earned"`
	}

	items := make([]item, 0, len(catalog))
	for _, a := range catalog {
		items = append(items, item{
			ID:             a.ID,
			Name:           a.Name,
			Description:    a.Description,
			Icon:           a.Icon,
			PointsRequired: a.PointsRequired,
			Earned:         earned[a.ID],
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// ListEarned returns the achievements the authenticated user has unlocked,
// with earn timestamps.
func (h *AchievementHandler) ListEarned(w http.ResponseWriter, r *http.Request) {
	earned, err := h.achievementStore.ListEarned(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list earned achievements", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list achievements"})
		return
	}
	writeJSON(w, http.StatusOK, earned)
}
