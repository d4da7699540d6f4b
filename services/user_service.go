package services

import (
	"context"
	"errors"
	"strings"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
)

// UserService covers the account page: viewing the profile and changing
// the contact email. Everything else about users is owned by the CSV
// import.
type UserService interface {
	Get(ctx context.Context, id int) (*models.User, error)
	UpdateEmail(ctx context.Context, id int, email string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateEmail(ctx context.Context, id int, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrValidationFailed
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Email == email {
		return user, nil
	}

	user.Email = email
	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, err
	}
	return user, nil
}
