package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
	"github.com/pronoleague/pronostics/storage"
)

var allowedLogoTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

var (
	ErrUnsupportedLogoType = errors.New("unsupported logo content type")
	ErrUploadsDisabled     = errors.New("logo uploads are not configured")
)

type TeamService interface {
	List(ctx context.Context) ([]models.Team, error)
	// UploadLogo stores a logo asset for the team and replaces any
	// previous one.
	UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader, logger *slog.Logger) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.uploader != nil {
		for i := range teams {
			resolveTeamLogo(s.uploader, &teams[i])
		}
	}
	return teams, nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	ext, ok := allowedLogoTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedLogoType
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("logos/%d/%s%s", team.ID, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	oldKey := team.LogoKey
	team.LogoKey = &result.Key
	if err := s.teamRepo.UpdateLogoKey(ctx, team.ID, team.LogoKey); err != nil {
		return nil, err
	}

	// Best effort: a stale object in the bucket is not worth failing
	// the request over.
	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous logo",
				slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	resolveTeamLogo(s.uploader, team)
	return team, nil
}
