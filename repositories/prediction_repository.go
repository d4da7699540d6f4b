package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pronoleague/pronostics/models"
)

var ErrPredictionNotFound = errors.New("prediction not found")

type PredictionRepository interface {
	// GetOrCreate returns the prediction for (userID, matchID), creating
	// an empty one when absent. Reports creation.
	GetOrCreate(ctx context.Context, userID, matchID int) (*models.Prediction, bool, error)
	GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Prediction, error)
	// UpdateScores stores the predicted scores together with the points
	// recomputed by the caller.
	UpdateScores(ctx context.Context, p *models.Prediction) error
	// ListByUser returns a user's predictions with the match joined,
	// ordered by kickoff.
	ListByUser(ctx context.Context, userID int) ([]models.Prediction, error)
	// ListAll returns every prediction with the match joined.
	ListAll(ctx context.Context) ([]models.Prediction, error)
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) GetOrCreate(ctx context.Context, userID, matchID int) (*models.Prediction, bool, error) {
	p, err := r.GetByUserAndMatch(ctx, userID, matchID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrPredictionNotFound) {
		return nil, false, err
	}

	p = &models.Prediction{UserID: userID, MatchID: matchID}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO predictions (user_id, match_id, points) VALUES ($1, $2, 0) RETURNING id`,
		userID, matchID,
	).Scan(&p.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create prediction: %w", err)
	}
	return p, true, nil
}

func (r *postgresPredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Prediction, error) {
	p := &models.Prediction{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, match_id, home_score, away_score, points
		 FROM predictions WHERE user_id = $1 AND match_id = $2`,
		userID, matchID,
	).Scan(&p.ID, &p.UserID, &p.MatchID, &p.HomeScore, &p.AwayScore, &p.Points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPredictionRepository) UpdateScores(ctx context.Context, p *models.Prediction) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE predictions SET home_score = $1, away_score = $2, points = $3 WHERE id = $4`,
		p.HomeScore, p.AwayScore, p.Points, p.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

const predictionWithMatchQuery = `
	SELECT
		p.id, p.user_id, p.match_id, p.home_score, p.away_score, p.points,` +
	joinedMatchColumns + `
	FROM predictions p
	JOIN matches m ON p.match_id = m.id
	JOIN teams h ON m.home_team_id = h.id
	JOIN teams a ON m.away_team_id = a.id
	JOIN seasons s ON m.season_id = s.id`

func scanPredictionWithMatch(rows *sql.Rows) (*models.Prediction, error) {
	var p models.Prediction
	var m models.Match
	var home, away models.Team
	var season models.Season

	err := rows.Scan(
		&p.ID, &p.UserID, &p.MatchID, &p.HomeScore, &p.AwayScore, &p.Points,
		&m.ID, &m.SeasonID, &m.Round, &m.HomeTeamID, &m.AwayTeamID,
		&m.KickoffAt, &m.HomeScore, &m.AwayScore,
		&home.ID, &home.Name, &home.LogoKey,
		&away.ID, &away.Name, &away.LogoKey,
		&season.ID, &season.Label,
	)
	if err != nil {
		return nil, err
	}

	m.HomeTeam = &home
	m.AwayTeam = &away
	m.Season = &season
	p.Match = &m
	return &p, nil
}

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID int) ([]models.Prediction, error) {
	query := predictionWithMatchQuery + ` WHERE p.user_id = $1 ORDER BY m.kickoff_at ASC, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPredictions(rows)
}

func (r *postgresPredictionRepository) ListAll(ctx context.Context) ([]models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, predictionWithMatchQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPredictions(rows)
}

func collectPredictions(rows *sql.Rows) ([]models.Prediction, error) {
	predictions := make([]models.Prediction, 0)
	for rows.Next() {
		p, err := scanPredictionWithMatch(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, *p)
	}
	return predictions, rows.Err()
}
