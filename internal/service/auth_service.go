package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exam-portal/internal/auth"
	"github.com/spec-kit/exam-portal/internal/config"
	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/repository"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// AuthService coordinates registration and login. Registration enforces the
// institutional email domain allow-list; every new account starts as a
// student with an incomplete profile. Admin roles are provisioned
// out-of-band, never through this service.
type AuthService struct {
	profiles       repository.ProfileRepository
	tokenMgr       *auth.TokenManager
	bcryptCost     int
	allowedDomains []string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, profiles repository.ProfileRepository) *AuthService {
	return &AuthService{
		profiles:       profiles,
		tokenMgr:       auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:     cfg.BcryptCost,
		allowedDomains: cfg.AllowedEmailDomains,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new student account.
func (s *AuthService) Register(ctx context.Context, email, fullName, password string) (*domain.Profile, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and a password of at least 8 characters are required", nil)
	}
	if !s.emailDomainAllowed(email) {
		return nil, "", time.Time{}, apperrors.NewValidationError("please use your institutional email address", map[string]any{"allowed_domains": s.allowedDomains})
	}

	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	profile := &domain.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Role:         domain.RoleStudent,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", time.Time{}, apperrors.NewPersistenceFailure(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// Login authenticates a profile by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

func (s *AuthService) emailDomainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domainPart := email[at+1:]
	for _, allowed := range s.allowedDomains {
		if strings.EqualFold(domainPart, strings.TrimPrefix(allowed, "@")) {
			return true
		}
	}
	return false
}
