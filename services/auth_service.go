package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
)

const (
	sessionTokenTTL     = 72 * time.Hour
	setPasswordTokenTTL = 15 * time.Minute
	minPasswordLength   = 8

	audienceSession     = "session"
	audienceSetPassword = "set_password"
)

// AuthService authenticates users. Accounts arrive via CSV import with
// no usable password; the first-login flow verifies the account's email
// and lets the user choose one.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	// FirstLogin verifies username+email on a passwordless account and
	// returns a short-lived token accepted by SetPassword.
	FirstLogin(ctx context.Context, username, email string) (string, error)
	// SetPassword consumes a FirstLogin token, stores the new password
	// and logs the user in.
	SetPassword(ctx context.Context, token, password string) (*models.User, string, error)
	ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	clock     clockwork.Clock
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, clock clockwork.Clock) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		clock:     clock,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.HasUsablePassword() {
		return nil, "", ErrPasswordNotSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.signToken(user, audienceSession, sessionTokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) FirstLogin(ctx context.Context, username, email string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if user.HasUsablePassword() {
		return "", ErrPasswordAlreadySet
	}
	if user.Email == "" || user.Email != email {
		return "", ErrEmailMismatch
	}

	return s.signToken(user, audienceSetPassword, setPasswordTokenTTL)
}

func (s *authService) SetPassword(ctx context.Context, token, password string) (*models.User, string, error) {
	userID, err := s.parseToken(token, audienceSetPassword)
	if err != nil {
		return nil, "", err
	}

	if len(password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	// The token was only issued for a passwordless account; re-check in
	// case a password appeared between the two requests.
	if user.HasUsablePassword() {
		return nil, "", ErrPasswordAlreadySet
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)
	user.PasswordHash = &hashStr

	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, "", err
	}

	sessionToken, err := s.signToken(user, audienceSession, sessionTokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, sessionToken, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !user.HasUsablePassword() {
		return ErrPasswordNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)
	user.PasswordHash = &hashStr

	return s.userRepo.Update(ctx, nil, user)
}

func (s *authService) signToken(user *models.User, audience string, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"user_id":      user.ID,
		"username":     user.Username,
		"is_protected": user.IsProtected,
		"aud":          audience,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) parseToken(tokenString, audience string) (int, error) {
	// The stock parser validates time claims against the wall clock;
	// parse without claim validation and check exp/iat against the
	// injected clock instead.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if aud, _ := claims["aud"].(string); aud != audience {
		return 0, ErrInvalidToken
	}

	now := s.clock.Now().Unix()
	exp, ok := claims["exp"].(float64)
	if !ok || now >= int64(exp) {
		return 0, ErrInvalidToken
	}
	if iat, ok := claims["iat"].(float64); ok && now < int64(iat) {
		return 0, ErrInvalidToken
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, ErrInvalidToken
	}
	return int(userIDFloat), nil
}
