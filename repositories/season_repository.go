package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pronoleague/pronostics/models"
)

var ErrSeasonNotFound = errors.New("season not found")

type SeasonRepository interface {
	GetOrCreateByLabel(ctx context.Context, exec SQLExecutor, label string) (*models.Season, bool, error)
	GetByLabel(ctx context.Context, label string) (*models.Season, error)
	List(ctx context.Context) ([]models.Season, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) GetOrCreateByLabel(ctx context.Context, exec SQLExecutor, label string) (*models.Season, bool, error) {
	e := executorOrDB(exec, r.db)

	season := &models.Season{Label: label}
	err := e.QueryRowContext(ctx,
		`SELECT id, label FROM seasons WHERE label = $1`, label,
	).Scan(&season.ID, &season.Label)
	if err == nil {
		return season, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up season %q: %w", label, err)
	}

	err = e.QueryRowContext(ctx,
		`INSERT INTO seasons (label) VALUES ($1) RETURNING id`, label,
	).Scan(&season.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create season %q: %w", label, err)
	}
	return season, true, nil
}

func (r *postgresSeasonRepository) GetByLabel(ctx context.Context, label string) (*models.Season, error) {
	season := &models.Season{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, label FROM seasons WHERE label = $1`, label,
	).Scan(&season.ID, &season.Label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}

func (r *postgresSeasonRepository) List(ctx context.Context) ([]models.Season, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label FROM seasons ORDER BY label DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seasons := make([]models.Season, 0)
	for rows.Next() {
		var season models.Season
		if err := rows.Scan(&season.ID, &season.Label); err != nil {
			return nil, err
		}
		seasons = append(seasons, season)
	}
	return seasons, rows.Err()
}
