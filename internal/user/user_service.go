package user

import (
	"context"
	"database/sql"
	"strings"

	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/shared/contextutil"
	usererrors "go-diligince/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RoleLookup confirms a system role exists before it is assigned.
type RoleLookup interface {
	SystemRoleExists(ctx context.Context, name string) (bool, error)
}

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, companyID string) ([]UserResponse, error)
	GetByID(ctx context.Context, companyID, id string) (UserResponse, error)
	Create(ctx context.Context, companyID, actorID string, req CreateUserRequest) (UserResponse, error)
	ToggleStatus(ctx context.Context, companyID, actorID, id string, isActive bool) error
	ChangePassword(ctx context.Context, companyID, userID, currentPassword, newPassword string) error
	ApplyChanges(ctx context.Context, tx *sql.Tx, companyID, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	roles   RoleLookup
	history audit.HistoryRepository
	audit   audit.Logger
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	roles RoleLookup,
	history audit.HistoryRepository,
	auditLogger audit.Logger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		roles:   roles,
		history: history,
		audit:   auditLogger,
		logger:  l,
	}
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]UserResponse, error) {
	users, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (UserResponse, error) {
	u, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*u), nil
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Info("creating user", zap.String("email", req.Email), zap.String("role", req.Role))

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return UserResponse{}, usererrors.ErrInvalidCompanyID
	}
	role := strings.TrimSpace(req.Role)
	if err := s.checkSystemRole(ctx, role); err != nil {
		return UserResponse{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		CompanyID: companyUUID,
		Name:      strings.TrimSpace(req.Name),
		Role:      role,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashedPassword),
		IsActive:  true,
		Version:   1,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, u); err != nil {
		l.Error("failed to create user", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}
	row := audit.NewRoleAssignment(companyID, u.ID.String(), audit.TargetTypeUser, "", u.RoleRef(), actorID, "account created")
	if err := s.history.WithTx(tx).Create(ctx, row); err != nil {
		return UserResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return UserResponse{}, err
	}

	resp := mapToResponse(*u)
	s.logAudit(ctx, "user.created", actorID, companyID, u.ID.String(), nil, resp, audit.CategoryUserManagement, audit.SeverityMedium)
	l.Info("user created successfully", zap.String("user_id", resp.ID))
	return resp, nil
}

func (s *service) ToggleStatus(ctx context.Context, companyID, actorID, id string, isActive bool) error {
	l := contextutil.GetLogger(ctx, s.logger)

	u, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		l.Warn("failed to find user", zap.String("user_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if u.IsActive == isActive {
		return nil
	}
	before := mapToResponse(*u)
	u.IsActive = isActive

	if err := s.repo.Update(ctx, u); err != nil {
		l.Error("failed to update user status", zap.Error(err))
		return mapRepositoryError(err)
	}

	s.logAudit(ctx, "user.status_changed", actorID, companyID, id, before, mapToResponse(*u), audit.CategoryUserManagement, audit.SeverityMedium)
	return nil
}

func (s *service) ChangePassword(ctx context.Context, companyID, userID, currentPassword, newPassword string) error {
	u, err := s.repo.FindByID(ctx, companyID, userID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
		return usererrors.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return mapRepositoryError(s.repo.Update(ctx, u))
}

// ApplyChanges merges an approved change set onto an account inside the
// caller's transaction. Only a system role and the active flag can change.
func (s *service) ApplyChanges(ctx context.Context, tx *sql.Tx, companyID, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error) {
	if cs.IsEmpty() {
		return domain.AppliedChange{}, usererrors.ErrEmptyChange
	}
	if cs.CustomRoleID != nil {
		return domain.AppliedChange{}, usererrors.ErrCustomRoleNotAllowed
	}
	if cs.SystemRole != nil {
		if err := s.checkSystemRole(ctx, *cs.SystemRole); err != nil {
			return domain.AppliedChange{}, err
		}
	}

	var active *bool
	if cs.Status != nil {
		switch *cs.Status {
		case "active":
			v := true
			active = &v
		case "inactive", "suspended":
			v := false
			active = &v
		default:
			return domain.AppliedChange{}, usererrors.ErrInvalidStatus
		}
	}

	qtx := s.repo.WithTx(tx)
	u, err := qtx.FindByID(ctx, companyID, id)
	if err != nil {
		return domain.AppliedChange{}, mapRepositoryError(err)
	}

	before := mapToResponse(*u)
	previousRole := u.RoleRef()
	if cs.SystemRole != nil {
		u.Role = *cs.SystemRole
	}
	if active != nil {
		u.IsActive = *active
	}

	if err := qtx.Update(ctx, u); err != nil {
		s.logger.Error("apply user changes persist failed", zap.String("user_id", id), zap.Error(err))
		return domain.AppliedChange{}, mapRepositoryError(err)
	}
	if u.RoleRef() != previousRole {
		row := audit.NewRoleAssignment(companyID, id, audit.TargetTypeUser, previousRole, u.RoleRef(), actorID, reason)
		if err := s.history.WithTx(tx).Create(ctx, row); err != nil {
			return domain.AppliedChange{}, err
		}
	}

	return domain.AppliedChange{Before: before, After: mapToResponse(*u)}, nil
}

func (s *service) checkSystemRole(ctx context.Context, name string) error {
	if name == "" {
		return usererrors.ErrSystemRoleNotFound
	}
	ok, err := s.roles.SystemRoleExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return usererrors.ErrSystemRoleNotFound
	}
	return nil
}

func (s *service) logAudit(ctx context.Context, action, actorID, companyID, targetID string, before, after any, category, severity string) {
	target := targetID
	_ = s.audit.Log(ctx, audit.Entry{
		Action:         action,
		PerformedBy:    actorID,
		TargetUser:     &target,
		TargetUserType: audit.TargetTypeUser,
		CompanyID:      companyID,
		Details:        audit.NewDetails(before, after),
		Category:       category,
		Severity:       severity,
	})
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		CompanyID: u.CompanyID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		Version:   u.Version,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
