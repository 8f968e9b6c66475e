package role

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-diligince/internal/audit"
	"go-diligince/internal/permission"
	roleerrors "go-diligince/internal/role/errors"
	"go-diligince/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyDirectory resolves the tenant type stamped on new roles.
type CompanyDirectory interface {
	CompanyType(ctx context.Context, companyID string) (string, error)
}

// RoleUsage counts sub-users that reference a custom role.
type RoleUsage interface {
	CountByCustomRole(ctx context.Context, companyID, roleID string) (int64, error)
}

// GrantCache is told when a custom role's grants may have changed.
type GrantCache interface {
	InvalidateCustomRole(ctx context.Context, companyID, roleID string)
}

//go:generate mockgen -source=role_service.go -destination=mock/role_service_mock.go -package=mock
type Service interface {
	CreateCustomRole(ctx context.Context, companyID, actorID string, req CreateCustomRoleRequest) (CustomRoleResponse, error)
	UpdateCustomRole(ctx context.Context, companyID, actorID, id string, patch CustomRolePatch) (CustomRoleResponse, error)
	DeleteCustomRole(ctx context.Context, companyID, actorID, id string) error
	GetCustomRole(ctx context.Context, companyID, id string) (CustomRoleResponse, error)
	ListCustomRoles(ctx context.Context, companyID string, includeInactive bool) ([]CustomRoleResponse, error)
	ListSystemRoles(ctx context.Context) ([]SystemRoleResponse, error)
	SeedSystemRoles(ctx context.Context, roles []SystemRole) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	companies CompanyDirectory
	usage     RoleUsage
	grants    GrantCache
	audit     audit.Logger
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	companies CompanyDirectory,
	usage RoleUsage,
	grants GrantCache,
	auditLogger audit.Logger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("role.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("role.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		companies: companies,
		usage:     usage,
		grants:    grants,
		audit:     auditLogger,
		logger:    l,
	}
}

func (s *service) CreateCustomRole(ctx context.Context, companyID, actorID string, req CreateCustomRoleRequest) (CustomRoleResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create custom role requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("name", req.Name),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return CustomRoleResponse{}, roleerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return CustomRoleResponse{}, roleerrors.ErrInvalidActorID
	}
	if err := req.Permissions.Validate(); err != nil {
		s.logger.Warn("create custom role invalid permissions", zap.Error(err))
		return CustomRoleResponse{}, roleerrors.ErrInvalidPermissions
	}
	name := strings.TrimSpace(req.Name)

	companyType, err := s.companies.CompanyType(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CustomRoleResponse{}, roleerrors.ErrCompanyNotFound
		}
		s.logger.Error("create custom role company lookup failed", zap.Error(err))
		return CustomRoleResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create custom role begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return CustomRoleResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.ExistsActiveName(ctx, companyID, name, "")
	if err != nil {
		s.logger.Error("create custom role name check failed", zap.Error(err))
		return CustomRoleResponse{}, err
	}
	if exists {
		s.logger.Warn("create custom role duplicate name",
			zap.String("company_id", companyID),
			zap.String("name", name),
		)
		return CustomRoleResponse{}, roleerrors.ErrDuplicateRoleName
	}

	r := &CustomRole{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		Name:        name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		CompanyType: companyType,
		Permissions: req.Permissions,
		IsActive:    true,
		CreatedBy:   actorUUID,
		Version:     1,
	}
	if err := qtx.Create(ctx, r); err != nil {
		s.logger.Error("create custom role persist failed", zap.Error(err))
		return CustomRoleResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create custom role commit failed", zap.String("request_id", rid), zap.Error(err))
		return CustomRoleResponse{}, err
	}

	resp := mapToResponse(*r)
	_ = s.audit.Log(ctx, audit.Entry{
		Action:      "role.created",
		PerformedBy: actorID,
		CompanyID:   companyID,
		Details:     audit.NewDetails(nil, resp),
		Category:    audit.CategoryRoleManagement,
		Severity:    audit.SeverityMedium,
	})

	s.logger.Info("create custom role success",
		zap.String("request_id", rid),
		zap.String("role_id", r.ID.String()),
	)
	return resp, nil
}

func (s *service) UpdateCustomRole(ctx context.Context, companyID, actorID, id string, patch CustomRolePatch) (CustomRoleResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update custom role requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("role_id", id),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return CustomRoleResponse{}, roleerrors.ErrInvalidActorID
	}
	if patch.IsEmpty() {
		return CustomRoleResponse{}, roleerrors.ErrEmptyPatch
	}
	if patch.Permissions != nil {
		if err := patch.Permissions.Validate(); err != nil {
			s.logger.Warn("update custom role invalid permissions", zap.Error(err))
			return CustomRoleResponse{}, roleerrors.ErrInvalidPermissions
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update custom role begin tx failed", zap.Error(err))
		return CustomRoleResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindActiveByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return CustomRoleResponse{}, mapRepositoryError(err)
	}
	before := mapToResponse(*r)

	if patch.Name != nil && *patch.Name != r.Name {
		exists, err := qtx.ExistsActiveName(ctx, companyID, *patch.Name, id)
		if err != nil {
			s.logger.Error("update custom role name check failed", zap.Error(err))
			return CustomRoleResponse{}, err
		}
		if exists {
			return CustomRoleResponse{}, roleerrors.ErrDuplicateRoleName
		}
	}

	permissionsChanged := patch.Apply(r)
	r.UpdatedBy = &actorUUID

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("update custom role persist failed",
			zap.String("role_id", id),
			zap.Error(err),
		)
		return CustomRoleResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update custom role commit failed", zap.String("role_id", id), zap.Error(err))
		return CustomRoleResponse{}, err
	}

	s.grants.InvalidateCustomRole(ctx, companyID, id)

	after := mapToResponse(*r)
	entry := audit.Entry{
		Action:      "role.updated",
		PerformedBy: actorID,
		CompanyID:   companyID,
		Details:     audit.NewDetails(before, after),
		Category:    audit.CategoryRoleManagement,
		Severity:    audit.SeverityMedium,
	}
	if permissionsChanged {
		entry.Category = audit.CategoryPermissionChange
		entry.Severity = audit.SeverityHigh
	}
	_ = s.audit.Log(ctx, entry)

	s.logger.Info("update custom role success",
		zap.String("request_id", rid),
		zap.String("role_id", id),
		zap.Int64("version", r.Version),
	)
	return after, nil
}

func (s *service) DeleteCustomRole(ctx context.Context, companyID, actorID, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete custom role requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("role_id", id),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return roleerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete custom role begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindActiveByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	inUse, err := s.usage.CountByCustomRole(ctx, companyID, id)
	if err != nil {
		s.logger.Error("delete custom role usage check failed", zap.Error(err))
		return err
	}
	if inUse > 0 {
		s.logger.Warn("delete custom role blocked",
			zap.String("role_id", id),
			zap.Int64("sub_users", inUse),
		)
		return roleerrors.ErrRoleInUse
	}

	before := mapToResponse(*r)
	r.IsActive = false
	r.UpdatedBy = &actorUUID

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("delete custom role persist failed", zap.String("role_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete custom role commit failed", zap.String("role_id", id), zap.Error(err))
		return err
	}

	s.grants.InvalidateCustomRole(ctx, companyID, id)

	_ = s.audit.Log(ctx, audit.Entry{
		Action:      "role.deleted",
		PerformedBy: actorID,
		CompanyID:   companyID,
		Details:     audit.NewDetails(before, mapToResponse(*r)),
		Category:    audit.CategoryRoleManagement,
		Severity:    audit.SeverityHigh,
	})

	s.logger.Info("delete custom role success", zap.String("request_id", rid), zap.String("role_id", id))
	return nil
}

// GetCustomRole also returns soft-deleted roles.
func (s *service) GetCustomRole(ctx context.Context, companyID, id string) (CustomRoleResponse, error) {
	r, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return CustomRoleResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*r), nil
}

func (s *service) ListCustomRoles(ctx context.Context, companyID string, includeInactive bool) ([]CustomRoleResponse, error) {
	roles, err := s.repo.ListByCompany(ctx, companyID, includeInactive)
	if err != nil {
		s.logger.Error("list custom roles failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}
	resp := make([]CustomRoleResponse, len(roles))
	for i, r := range roles {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

func (s *service) ListSystemRoles(ctx context.Context) ([]SystemRoleResponse, error) {
	roles, err := s.repo.ListActiveSystemRoles(ctx)
	if err != nil {
		s.logger.Error("list system roles failed", zap.Error(err))
		return nil, err
	}
	resp := make([]SystemRoleResponse, len(roles))
	for i, r := range roles {
		resp[i] = SystemRoleResponse{
			Name:        r.Name,
			DisplayName: r.DisplayName,
			Permissions: r.Permissions,
		}
	}
	return resp, nil
}

// SeedSystemRoles upserts by name, so it is safe to run on every start.
func (s *service) SeedSystemRoles(ctx context.Context, roles []SystemRole) error {
	for i := range roles {
		r := roles[i]
		if _, err := permission.GrantsFromStrings(r.Permissions); err != nil {
			return err
		}
		if err := s.repo.UpsertSystemRole(ctx, &r); err != nil {
			s.logger.Error("seed system role failed", zap.String("role", r.Name), zap.Error(err))
			return err
		}
	}
	s.logger.Info("system roles seeded", zap.Int("count", len(roles)))
	return nil
}

func mapToResponse(r CustomRole) CustomRoleResponse {
	resp := CustomRoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		CompanyID:   r.CompanyID.String(),
		CompanyType: r.CompanyType,
		Permissions: r.Permissions,
		IsActive:    r.IsActive,
		CreatedBy:   r.CreatedBy.String(),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
	if r.UpdatedBy != nil {
		v := r.UpdatedBy.String()
		resp.UpdatedBy = &v
	}
	return resp
}
