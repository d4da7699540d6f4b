package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pronoleague/pronostics/middleware"
	"github.com/pronoleague/pronostics/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(predictionService services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

// ListMine returns the caller's predictions in kickoff order.
func (h *PredictionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "invalid session")
		return
	}

	predictions, err := h.predictionService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// GetForMatch opens the prediction form for one match, lazily creating
// the empty prediction on first visit.
func (h *PredictionHandler) GetForMatch(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "invalid session")
		return
	}
	matchID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || matchID <= 0 {
		notFoundResponse(w)
		return
	}

	prediction, match, err := h.predictionService.GetOrCreateForMatch(r.Context(), userID, matchID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"prediction": prediction, "match": match}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

func (h *PredictionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "invalid session")
		return
	}
	matchID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || matchID <= 0 {
		notFoundResponse(w)
		return
	}

	var input struct {
		HomeScore int `json:"home_score"`
		AwayScore int `json:"away_score"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	prediction, err := h.predictionService.Submit(r.Context(), userID, matchID, input.HomeScore, input.AwayScore)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}
