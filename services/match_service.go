package services

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
	"github.com/pronoleague/pronostics/storage"
)

type MatchService interface {
	// List returns the calendar, optionally filtered by season label; an
	// unknown label is ErrNotFound rather than an empty calendar.
	List(ctx context.Context, seasonLabel string) ([]models.Match, error)
	Get(ctx context.Context, id int) (*models.Match, error)
	// Next returns the earliest match kicking off at or after now, or
	// ErrNoUpcomingMatch when the calendar has run out.
	Next(ctx context.Context) (*models.Match, error)
	Seasons(ctx context.Context) ([]models.Season, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	seasonRepo repositories.SeasonRepository
	clock      clockwork.Clock
	uploader   storage.FileUploader
}

func NewMatchService(matchRepo repositories.MatchRepository, seasonRepo repositories.SeasonRepository, clock clockwork.Clock, uploader storage.FileUploader) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		seasonRepo: seasonRepo,
		clock:      clock,
		uploader:   uploader,
	}
}

func (s *matchService) List(ctx context.Context, seasonLabel string) ([]models.Match, error) {
	if seasonLabel != "" {
		if _, err := s.seasonRepo.GetByLabel(ctx, seasonLabel); err != nil {
			if errors.Is(err, repositories.ErrSeasonNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	matches, err := s.matchRepo.List(ctx, seasonLabel)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		s.resolveLogos(&matches[i])
	}
	return matches, nil
}

func (s *matchService) Seasons(ctx context.Context) ([]models.Season, error) {
	return s.seasonRepo.List(ctx)
}

func (s *matchService) Get(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	s.resolveLogos(match)
	return match, nil
}

func (s *matchService) Next(ctx context.Context) (*models.Match, error) {
	match, err := s.matchRepo.NextAfter(ctx, s.clock.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrNoUpcomingMatch
		}
		return nil, err
	}
	s.resolveLogos(match)
	return match, nil
}

func (s *matchService) resolveLogos(match *models.Match) {
	if s.uploader == nil {
		return
	}
	resolveTeamLogo(s.uploader, match.HomeTeam)
	resolveTeamLogo(s.uploader, match.AwayTeam)
}

func resolveTeamLogo(uploader storage.FileUploader, team *models.Team) {
	if team == nil || team.LogoKey == nil {
		return
	}
	url := uploader.GetPublicURL(*team.LogoKey)
	if url != "" {
		team.LogoURL = &url
	}
}
