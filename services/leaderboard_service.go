package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
	"github.com/pronoleague/pronostics/scoring"
)

// NotYetPredicted is the sentinel shown for a user without a submitted
// prediction on the upcoming match ("sans pronostic").
const NotYetPredicted = "SP"

// LeaderboardRow is one ranking line. ThisWeekPrediction renders the
// user's pick for the next match as "home-away".
type LeaderboardRow struct {
	Username           string `json:"username"`
	Total              int    `json:"total"`
	ThisWeekPrediction string `json:"this_week_prediction"`
	ThisWeekPoints     int    `json:"this_week_points"`
}

type Leaderboard struct {
	Rows      []LeaderboardRow `json:"rows"`
	NextMatch *models.Match    `json:"next_match,omitempty"`
}

// LeaderboardService projects the ranking from scratch on every call;
// nothing about it is cached or persisted.
type LeaderboardService interface {
	Standings(ctx context.Context) (*Leaderboard, error)
}

type leaderboardService struct {
	predictionRepo repositories.PredictionRepository
	userRepo       repositories.UserRepository
	matchRepo      repositories.MatchRepository
	clock          clockwork.Clock
}

func NewLeaderboardService(
	predictionRepo repositories.PredictionRepository,
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	clock clockwork.Clock,
) LeaderboardService {
	return &leaderboardService{
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		matchRepo:      matchRepo,
		clock:          clock,
	}
}

func (s *leaderboardService) Standings(ctx context.Context) (*Leaderboard, error) {
	predictions, err := s.predictionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	nextMatch, err := s.matchRepo.NextAfter(ctx, s.clock.Now())
	if err != nil && !errors.Is(err, repositories.ErrMatchNotFound) {
		return nil, err
	}

	// Totals per user id, recomputed from the scoring rules.
	totals := make(map[int]int, len(users))
	picks := make(map[int]*models.Prediction)
	for i := range predictions {
		p := &predictions[i]
		totals[p.UserID] += scoring.Points(p, p.Match)
		if nextMatch != nil && p.MatchID == nextMatch.ID {
			picks[p.UserID] = p
		}
	}

	// Every user gets a row, including those who never predicted.
	rows := make([]LeaderboardRow, 0, len(users))
	for _, user := range users {
		row := LeaderboardRow{
			Username:           user.Username,
			Total:              totals[user.ID],
			ThisWeekPrediction: NotYetPredicted,
		}
		if pick, ok := picks[user.ID]; ok && pick.IsComplete() {
			row.ThisWeekPrediction = fmt.Sprintf("%d-%d", *pick.HomeScore, *pick.AwayScore)
			row.ThisWeekPoints = scoring.Points(pick, nextMatch)
		}
		rows = append(rows, row)
	}

	// Descending total, alphabetical among ties.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Username < rows[j].Username
	})

	return &Leaderboard{Rows: rows, NextMatch: nextMatch}, nil
}
