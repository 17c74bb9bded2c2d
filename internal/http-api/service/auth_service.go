package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"
	"reviewhub/internal/mailer"
	"reviewhub/pkg/logger"
)

// Claims is the access-token payload.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	SignUp(ctx context.Context, username, email string) error
	IssueToken(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	codeRepo  repository.CodeRepository
	notifier  mailer.Notifier
	limits    validation.Limits
	jwtSecret string
	tokenTTL  time.Duration
	codeTTL   time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	codeRepo repository.CodeRepository,
	notifier mailer.Notifier,
	limits validation.Limits,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		codeRepo:  codeRepo,
		notifier:  notifier,
		limits:    limits,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.AccessTokenTTL,
		codeTTL:   cfg.ConfirmationCodeTTL,
	}
}

// SignUp gets or creates the user for the (username, email) pair and issues a
// fresh confirmation code. Signing up again with the same pair is not an
// error, it only re-issues the code. A username or email already owned by a
// different pairing is a conflict.
func (s *authService) SignUp(ctx context.Context, username, email string) error {
	if err := s.limits.Username(username); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.limits.Email(email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.userRepo.FindByUsernameAndEmail(ctx, username, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if user == nil {
		if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
			return fmt.Errorf("%w: username already in use", ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
			return fmt.Errorf("%w: email already in use", ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user = &models.User{
			Username: username,
			Email:    email,
			Role:     "user",
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			// unique index may still fire under a concurrent signup race
			if repository.IsDuplicate(err) {
				return fmt.Errorf("%w: username or email already in use", ErrConflict)
			}
			return err
		}
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.codeRepo.Store(ctx, username, string(hash), s.codeTTL); err != nil {
		return err
	}

	if err := s.notifier.Send(email, "Your confirmation code",
		fmt.Sprintf("Use this code to obtain an access token: %s", code)); err != nil {
		logger.Warn().Err(err).Str("username", username).Msg("confirmation mail delivery failed")
	}

	return nil
}

// IssueToken exchanges a (username, confirmation code) pair for an access
// token. Only the most recently issued code for the username verifies.
func (s *authService) IssueToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return "", err
	}

	hash, err := s.codeRepo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return "", fmt.Errorf("%w: invalid confirmation code", ErrUnauthorized)
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return "", fmt.Errorf("%w: invalid confirmation code", ErrUnauthorized)
	}

	return s.generateAccessToken(user)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func generateCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
