package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pronoleague/pronostics/models"
)

var ErrMatchNotFound = errors.New("match not found")

// UpsertOutcome reports what an Upsert actually did, so import runs over
// an unchanged source can be recognized as no-ops.
type UpsertOutcome int

const (
	UpsertCreated UpsertOutcome = iota
	UpsertUpdated
	UpsertUnchanged
)

type MatchRepository interface {
	// Upsert creates or overwrites the match identified by
	// (home_team_id, away_team_id, kickoff_at). Season, round and both
	// scores are overwritten on an existing row; a write that would not
	// change anything is skipped and reported as UpsertUnchanged.
	Upsert(ctx context.Context, exec SQLExecutor, match *models.Match) (UpsertOutcome, error)
	// ListAll returns every stored match without joined relations;
	// used by the reconciliation deletion pass.
	ListAll(ctx context.Context, exec SQLExecutor) ([]models.Match, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, seasonLabel string) ([]models.Match, error)
	// NextAfter returns the earliest match kicking off at or after t.
	NextAfter(ctx context.Context, t time.Time) (*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Upsert(ctx context.Context, exec SQLExecutor, match *models.Match) (UpsertOutcome, error) {
	e := executorOrDB(exec, r.db)

	var id int
	err := e.QueryRowContext(ctx,
		`SELECT id FROM matches
		 WHERE home_team_id = $1 AND away_team_id = $2 AND kickoff_at = $3`,
		match.HomeTeamID, match.AwayTeamID, match.KickoffAt,
	).Scan(&id)

	switch {
	case err == nil:
		match.ID = id
		// The IS DISTINCT FROM guard makes an identical import run a
		// no-op write, which keeps reconciliation idempotent.
		result, err := e.ExecContext(ctx,
			`UPDATE matches
			 SET season_id = $1, round = $2, home_score = $3, away_score = $4
			 WHERE id = $5
			   AND (season_id IS DISTINCT FROM $1
			     OR round IS DISTINCT FROM $2
			     OR home_score IS DISTINCT FROM $3
			     OR away_score IS DISTINCT FROM $4)`,
			match.SeasonID, match.Round, match.HomeScore, match.AwayScore, id)
		if err != nil {
			return UpsertUnchanged, fmt.Errorf("failed to update match %d: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return UpsertUnchanged, err
		}
		if affected == 0 {
			return UpsertUnchanged, nil
		}
		return UpsertUpdated, nil

	case errors.Is(err, sql.ErrNoRows):
		err = e.QueryRowContext(ctx,
			`INSERT INTO matches (season_id, round, home_team_id, away_team_id, kickoff_at, home_score, away_score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			match.SeasonID, match.Round, match.HomeTeamID, match.AwayTeamID,
			match.KickoffAt, match.HomeScore, match.AwayScore,
		).Scan(&match.ID)
		if err != nil {
			return UpsertUnchanged, fmt.Errorf("failed to create match: %w", err)
		}
		return UpsertCreated, nil

	default:
		return UpsertUnchanged, fmt.Errorf("failed to look up match: %w", err)
	}
}

func (r *postgresMatchRepository) ListAll(ctx context.Context, exec SQLExecutor) ([]models.Match, error) {
	e := executorOrDB(exec, r.db)

	rows, err := e.QueryContext(ctx,
		`SELECT id, season_id, round, home_team_id, away_team_id, kickoff_at, home_score, away_score
		 FROM matches`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		err := rows.Scan(&m.ID, &m.SeasonID, &m.Round, &m.HomeTeamID, &m.AwayTeamID,
			&m.KickoffAt, &m.HomeScore, &m.AwayScore)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	e := executorOrDB(exec, r.db)

	result, err := e.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

const joinedMatchColumns = `
	m.id, m.season_id, m.round, m.home_team_id, m.away_team_id, m.kickoff_at, m.home_score, m.away_score,
	h.id, h.name, h.logo_key,
	a.id, a.name, a.logo_key,
	s.id, s.label`

const joinedMatchFrom = `
	FROM matches m
	JOIN teams h ON m.home_team_id = h.id
	JOIN teams a ON m.away_team_id = a.id
	JOIN seasons s ON m.season_id = s.id`

func scanJoinedMatch(scanner interface{ Scan(dest ...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var home, away models.Team
	var season models.Season

	err := scanner.Scan(
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
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + joinedMatchColumns + joinedMatchFrom + ` WHERE m.id = $1`

	match, err := scanJoinedMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// List returns matches ordered by kickoff, optionally filtered by season
// label (empty string = all seasons).
func (r *postgresMatchRepository) List(ctx context.Context, seasonLabel string) ([]models.Match, error) {
	query := `SELECT` + joinedMatchColumns + joinedMatchFrom
	args := []interface{}{}
	if seasonLabel != "" {
		query += ` WHERE s.label = $1`
		args = append(args, seasonLabel)
	}
	query += ` ORDER BY m.kickoff_at ASC, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		match, err := scanJoinedMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) NextAfter(ctx context.Context, t time.Time) (*models.Match, error) {
	query := `SELECT` + joinedMatchColumns + joinedMatchFrom +
		` WHERE m.kickoff_at >= $1 ORDER BY m.kickoff_at ASC, m.id ASC LIMIT 1`

	match, err := scanJoinedMatch(r.db.QueryRowContext(ctx, query, t))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}
