package services

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
	"github.com/pronoleague/pronostics/scoring"
)

// EventPredictionSaved is broadcast to the live hub on every saved
// prediction.
const EventPredictionSaved = "PREDICTION_SAVED"

// Notifier is satisfied by the live hub.
type Notifier interface {
	BroadcastEvent(eventType string, payload interface{})
}

type PredictionService interface {
	// GetOrCreateForMatch lazily creates the caller's empty prediction
	// on first visit to an open match's prediction form.
	GetOrCreateForMatch(ctx context.Context, userID, matchID int) (*models.Prediction, *models.Match, error)
	// Submit stores the predicted scores. Points are recomputed from the
	// scoring rules on every save, never carried over.
	Submit(ctx context.Context, userID, matchID, homeScore, awayScore int) (*models.Prediction, error)
	// ListForUser returns the caller's predictions, kickoff order, with
	// points recomputed on read.
	ListForUser(ctx context.Context, userID int) ([]models.Prediction, error)
}

type predictionService struct {
	predictionRepo repositories.PredictionRepository
	matchRepo      repositories.MatchRepository
	clock          clockwork.Clock
	hub            Notifier
}

func NewPredictionService(
	predictionRepo repositories.PredictionRepository,
	matchRepo repositories.MatchRepository,
	clock clockwork.Clock,
	hub Notifier,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		matchRepo:      matchRepo,
		clock:          clock,
		hub:            hub,
	}
}

func (s *predictionService) GetOrCreateForMatch(ctx context.Context, userID, matchID int) (*models.Prediction, *models.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if !match.IsOpenForPrediction(s.clock.Now()) {
		return nil, nil, ErrMatchClosed
	}

	prediction, _, err := s.predictionRepo.GetOrCreate(ctx, userID, matchID)
	if err != nil {
		return nil, nil, err
	}
	return prediction, match, nil
}

func (s *predictionService) Submit(ctx context.Context, userID, matchID, homeScore, awayScore int) (*models.Prediction, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrNegativeScore
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsOpenForPrediction(s.clock.Now()) {
		return nil, ErrMatchClosed
	}

	prediction, _, err := s.predictionRepo.GetOrCreate(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	prediction.HomeScore = &homeScore
	prediction.AwayScore = &awayScore
	prediction.Points = scoring.Points(prediction, match)

	if err := s.predictionRepo.UpdateScores(ctx, prediction); err != nil {
		return nil, err
	}
	prediction.Match = match

	if s.hub != nil {
		s.hub.BroadcastEvent(EventPredictionSaved, map[string]int{
			"user_id":  userID,
			"match_id": matchID,
		})
	}
	return prediction, nil
}

func (s *predictionService) ListForUser(ctx context.Context, userID int) ([]models.Prediction, error) {
	predictions, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The stored points column is a denormalization; projections always
	// recompute so a rule change or late result edit cannot go stale.
	for i := range predictions {
		predictions[i].Points = scoring.Points(&predictions[i], predictions[i].Match)
	}
	return predictions, nil
}

func (s *predictionService) getMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}
