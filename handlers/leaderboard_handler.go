package handlers

import (
	"net/http"

	"github.com/pronoleague/pronostics/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := h.leaderboardService.Standings(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, leaderboard, nil); err != nil {
		serverErrorResponse(w, err)
	}
}
