package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/semillita/semillita/internal/auth"
	"github.com/semillita/semillita/internal/store"
	"github.com/semillita/semillita/internal/websocket"
)

type RewardHandler struct {
	rewardStore *store.RewardStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewRewardHandler(rs *store.RewardStore, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewardStore: rs, hub: hub, logger: logger}
}

// List returns the purchasable catalog.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewardStore.ListActive()
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list rewards"})
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

// ListPurchased returns the authenticated user's purchases, newest first.
func (h *RewardHandler) ListPurchased(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.rewardStore.ListPurchased(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list purchased rewards", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list purchases"})
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

// Purchase spends points on a reward. The store runs the whole exchange in
// one transaction, so a failure here never leaves a half-applied purchase.
func (h *RewardHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	rewardID, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reward ID"})
		return
	}

	userID := auth.UserID(r.Context())
	purchase, user, err := h.rewardStore.Purchase(r.Context(), userID, rewardID)
	switch {
	case errors.Is(err, store.ErrRewardNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reward not found"})
		return
	case errors.Is(err, store.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	case errors.Is(err, store.ErrInsufficientPoints):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "not enough points"})
		return
	case errors.Is(err, store.ErrAlreadyPurchased):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "reward already purchased"})
		return
	case err != nil:
		h.logger.Error("purchase reward", "error", err, "user_id", userID, "reward_id", rewardID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to purchase reward"})
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("reward", "purchased", rewardID, map[string]any{
		"points_remaining": user.Points,
	}))

	writeJSON(w, http.StatusCreated, map[string]any{
		"purchase":         purchase,
		"points_remaining": user.Points,
	})
}
