package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pronoleague/pronostics/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	GetOrCreateByName(ctx context.Context, exec SQLExecutor, name string) (*models.Team, bool, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

// GetOrCreateByName resolves a team by exact name, creating it when
// absent. The second return value reports whether a row was created.
func (r *postgresTeamRepository) GetOrCreateByName(ctx context.Context, exec SQLExecutor, name string) (*models.Team, bool, error) {
	e := executorOrDB(exec, r.db)

	team := &models.Team{Name: name}
	err := e.QueryRowContext(ctx,
		`SELECT id, name, logo_key FROM teams WHERE name = $1`, name,
	).Scan(&team.ID, &team.Name, &team.LogoKey)
	if err == nil {
		return team, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up team %q: %w", name, err)
	}

	err = e.QueryRowContext(ctx,
		`INSERT INTO teams (name) VALUES ($1) RETURNING id`, name,
	).Scan(&team.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create team %q: %w", name, err)
	}
	return team, true, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, logo_key FROM teams WHERE id = $1`, id,
	).Scan(&team.ID, &team.Name, &team.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, logo_key FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.LogoKey); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
