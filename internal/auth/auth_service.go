package auth

import (
	"context"
	"errors"
	"time"

	autherrors "go-diligince/internal/auth/errors"
	"go-diligince/internal/shared/token"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userType, userID string) (*AuthResponse, error)
}

type service struct {
	repo   Repository
	cfg    TokenConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, cfg TokenConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &service{repo: repo, cfg: cfg, now: time.Now, logger: l}
}

// Login checks top-level accounts first, then sub-users.
func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	acc, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		acc, err = s.repo.FindSubUserByEmail(ctx, email)
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
		}
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if acc.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("login rejected", zap.String("user_type", acc.UserType))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !acc.Active {
		return "", "", AuthResponse{}, autherrors.ErrAccountInactive
	}

	access, refresh, err := s.issuePair(acc)
	if err != nil {
		return "", "", AuthResponse{}, err
	}
	s.logger.Info("login success", zap.String("user_id", acc.ID), zap.String("user_type", acc.UserType))
	return access, refresh, mapToResponse(acc), nil
}

// RefreshToken reloads the account so role changes and deactivation take
// effect on the next refresh.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	claims, err := token.Parse(s.cfg.Secret, refreshToken, token.TypeRefresh)
	if err != nil {
		if token.IsExpired(err) {
			return "", "", AuthResponse{}, autherrors.ErrTokenExpired
		}
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	acc, err := s.repo.FindAccount(ctx, claims.UserType, claims.UserID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}
	if !acc.Active {
		return "", "", AuthResponse{}, autherrors.ErrAccountInactive
	}

	access, refresh, err := s.issuePair(acc)
	if err != nil {
		return "", "", AuthResponse{}, err
	}
	return access, refresh, mapToResponse(acc), nil
}

func (s *service) GetMe(ctx context.Context, userType, userID string) (*AuthResponse, error) {
	acc, err := s.repo.FindAccount(ctx, userType, userID)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}
	resp := mapToResponse(acc)
	return &resp, nil
}

func (s *service) issuePair(acc *Account) (string, string, error) {
	claims := token.Claims{
		UserID:      acc.ID,
		CompanyID:   acc.CompanyID,
		CompanyType: acc.CompanyType,
		UserType:    acc.UserType,
		Role:        acc.Role,
	}
	if acc.CustomRoleID != nil {
		claims.CustomRoleID = *acc.CustomRoleID
	}

	now := s.now()
	access, err := token.Issue(s.cfg.Secret, claims, token.TypeAccess, s.cfg.AccessTTL, now)
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return "", "", autherrors.ErrTokenGenerationFailed
	}
	refresh, err := token.Issue(s.cfg.Secret, claims, token.TypeRefresh, s.cfg.RefreshTTL, now)
	if err != nil {
		s.logger.Error("sign refresh token failed", zap.Error(err))
		return "", "", autherrors.ErrTokenGenerationFailed
	}
	return access, refresh, nil
}

func mapToResponse(acc *Account) AuthResponse {
	return AuthResponse{
		ID:           acc.ID,
		CompanyID:    acc.CompanyID,
		CompanyType:  acc.CompanyType,
		UserType:     acc.UserType,
		Email:        acc.Email,
		Name:         acc.Name,
		Role:         acc.Role,
		CustomRoleID: acc.CustomRoleID,
	}
}
