package handler

import (
	"log/slog"
	"net/http"

	"github.com/semillita/semillita/internal/model"
	"github.com/semillita/semillita/internal/store"
)

// RosterHandler serves the facilitator dashboard: the list of children in
// the program and a per-child summary.
type RosterHandler struct {
	userStore        *store.UserStore
	plantStore       *store.PlantStore
	journalStore     *store.JournalStore
	achievementStore *store.AchievementStore
	logger           *slog.Logger
}

func NewRosterHandler(
	us *store.UserStore,
	ps *store.PlantStore,
	js *store.JournalStore,
	as *store.AchievementStore,
	logger *slog.Logger,
) *RosterHandler {
	return &RosterHandler{
		userStore:        us,
		plantStore:       ps,
		journalStore:     js,
		achievementStore: as,
		logger:           logger,
	}
}

// ListChildren returns every child account with consent state and points.
func (h *RosterHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.userStore.ListByRole(model.RoleChild)
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list children"})
		return
	}
	writeJSON(w, http.StatusOK, children)
}

// ChildDetail returns one child's plant, journal count, and earned
// achievements in a single response.
func (h *RosterHandler) ChildDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
		return
	}

	child, err := h.userStore.GetByID(id)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get child"})
		return
	}
	if child == nil || child.Role != model.RoleChild {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "child not found"})
		return
	}

	plant, err := h.plantStore.GetActive(id)
	if err != nil {
		h.logger.Error("get child plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get child"})
		return
	}

	entries, err := h.journalStore.ListByUser(id)
	if err != nil {
		h.logger.Error("list child entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get child"})
		return
	}

	earned, err := h.achievementStore.ListEarned(id)
	if err != nil {
		h.logger.Error("list child achievements", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get child"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"child":        child,
		"plant":        plant,
		"entries":      entries,
		"achievements": earned,
	})
}
