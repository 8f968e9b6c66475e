package company

import (
	"context"
	"errors"
	"strings"
	"time"

	companyerrors "go-diligince/internal/company/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/company_service_mock.go -package=mock . Service
type Service interface {
	GetByID(ctx context.Context, id string) (*CompanyResponse, error)
	Update(ctx context.Context, id string, req UpdateCompanyRequest) (*CompanyResponse, error)
	CompanyType(ctx context.Context, companyID string) (string, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("company.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) load(ctx context.Context, id string) (*Company, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, companyerrors.ErrInvalidCompanyID
	}
	comp, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companyerrors.ErrCompanyNotFound
		}
		s.logger.Error("load company failed", zap.String("company_id", id), zap.Error(err))
		return nil, err
	}
	return comp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*CompanyResponse, error) {
	comp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapToResponse(comp), nil
}

// Update never changes the company type; roles stamped with it stay valid.
func (s *service) Update(ctx context.Context, id string, req UpdateCompanyRequest) (*CompanyResponse, error) {
	comp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		comp.Name = name
	}
	if req.Email != "" {
		comp.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.IsActive != nil {
		comp.IsActive = *req.IsActive
	}
	comp.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, comp); err != nil {
		s.logger.Error("update company failed", zap.String("company_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("company updated", zap.String("company_id", id))
	return mapToResponse(comp), nil
}

// CompanyType returns the raw repository error so callers can map a missing
// company to their own sentinel.
func (s *service) CompanyType(ctx context.Context, companyID string) (string, error) {
	uid, err := uuid.Parse(companyID)
	if err != nil {
		return "", companyerrors.ErrInvalidCompanyID
	}
	comp, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}
	return comp.Type, nil
}

func mapToResponse(c *Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Type:      c.Type,
		Email:     c.Email,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
