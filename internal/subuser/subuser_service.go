package subuser

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-diligince/internal/access"
	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/notification"
	"go-diligince/internal/permission"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/contextutil"
	subusererrors "go-diligince/internal/subuser/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultInvitationTTL = 7 * 24 * time.Hour

// RoleLookup validates role references before they are assigned.
type RoleLookup interface {
	CustomRoleActive(ctx context.Context, companyID, roleID string) (bool, error)
	SystemRoleExists(ctx context.Context, name string) (bool, error)
}

//go:generate mockgen -source=subuser_service.go -destination=mock/subuser_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateSubUserRequest) (CreateSubUserResponse, error)
	AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (SubUserResponse, error)
	Activate(ctx context.Context, caller domain.Caller, id string) (SubUserResponse, error)
	UpdateStatus(ctx context.Context, caller domain.Caller, id, status string) (SubUserResponse, error)
	BulkUpdateStatus(ctx context.Context, caller domain.Caller, ids []string, status string) (BulkStatusResult, error)
	Update(ctx context.Context, caller domain.Caller, id string, patch SubUserPatch) (SubUserResponse, error)
	ApplyChanges(ctx context.Context, tx *sql.Tx, companyID, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error)
	Delete(ctx context.Context, caller domain.Caller, id string) error
	GetByID(ctx context.Context, companyID, id string) (SubUserResponse, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]SubUserResponse, error)
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	db            *sql.DB
	repo          Repository
	roles         RoleLookup
	history       audit.HistoryRepository
	guard         *access.Guard
	audit         audit.Logger
	notifier      notification.Notifier
	invitationTTL time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	roles RoleLookup,
	history audit.HistoryRepository,
	guard *access.Guard,
	auditLogger audit.Logger,
	notifier notification.Notifier,
	invitationTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("subuser.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("subuser.service")
	}
	if invitationTTL <= 0 {
		invitationTTL = DefaultInvitationTTL
	}
	return &service{
		db:            db,
		repo:          repo,
		roles:         roles,
		history:       history,
		guard:         guard,
		audit:         auditLogger,
		notifier:      notifier,
		invitationTTL: invitationTTL,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateSubUserRequest) (CreateSubUserResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create sub-user requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return CreateSubUserResponse{}, subusererrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return CreateSubUserResponse{}, subusererrors.ErrInvalidActorID
	}
	if (req.CustomRoleID == nil) == (req.SystemRole == nil) {
		return CreateSubUserResponse{}, subusererrors.ErrRoleRequired
	}
	if err := s.checkRole(ctx, companyID, req.CustomRoleID, req.SystemRole); err != nil {
		return CreateSubUserResponse{}, err
	}
	if req.ReportingTo != nil {
		if err := s.checkReportingTo(ctx, s.repo, companyID, "", *req.ReportingTo); err != nil {
			return CreateSubUserResponse{}, err
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return CreateSubUserResponse{}, subusererrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("create sub-user email check failed", zap.Error(err))
		return CreateSubUserResponse{}, err
	}

	now := s.now()
	token := newInvitationToken()
	expiry := now.Add(s.invitationTTL)
	u := &SubUser{
		ID:               uuid.New(),
		ParentUserID:     actorUUID,
		CompanyID:        companyUUID,
		Email:            email,
		FullName:         strings.TrimSpace(req.FullName),
		Status:           StatusPending,
		InvitationToken:  &token,
		InvitationExpiry: &expiry,
		Version:          1,
	}
	SubUserPatch{CustomRoleID: req.CustomRoleID, SystemRole: req.SystemRole, ReportingTo: req.ReportingTo}.apply(u)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create sub-user begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return CreateSubUserResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, u); err != nil {
		s.logger.Error("create sub-user persist failed", zap.Error(err))
		return CreateSubUserResponse{}, mapRepositoryError(err)
	}
	row := audit.NewRoleAssignment(companyID, u.ID.String(), audit.TargetTypeSubUser, "", u.RoleRef(), actorID, "initial assignment")
	if err := s.history.WithTx(tx).Create(ctx, row); err != nil {
		s.logger.Error("create sub-user role history failed", zap.Error(err))
		return CreateSubUserResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create sub-user commit failed", zap.String("request_id", rid), zap.Error(err))
		return CreateSubUserResponse{}, err
	}

	resp := mapToResponse(*u)
	s.logAudit(ctx, "subuser.created", actorID, companyID, u.ID.String(), nil, resp, audit.CategoryUserManagement, audit.SeverityMedium)
	_ = s.notifier.Notify(ctx, notification.Message{
		CompanyID: companyID,
		UserID:    actorID,
		Title:     "Sub-user invited",
		Message:   "An invitation was created for " + u.Email,
		Type:      notification.TypeInvitation,
	})

	s.logger.Info("create sub-user success",
		zap.String("request_id", rid),
		zap.String("sub_user_id", u.ID.String()),
	)
	return CreateSubUserResponse{SubUserResponse: resp, InvitationToken: token}, nil
}

func (s *service) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (SubUserResponse, error) {
	u, err := s.repo.FindByInvitationToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubUserResponse{}, subusererrors.ErrInvalidInvitation
		}
		s.logger.Error("accept invitation lookup failed", zap.Error(err))
		return SubUserResponse{}, err
	}
	if u.InvitationExpiry == nil || !s.now().Before(*u.InvitationExpiry) {
		s.logger.Warn("accept invitation expired", zap.String("sub_user_id", u.ID.String()))
		return SubUserResponse{}, subusererrors.ErrInvalidInvitation
	}
	if u.Status != StatusPending {
		return SubUserResponse{}, subusererrors.ErrInvalidStatusTransition
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return SubUserResponse{}, err
	}

	before := mapToResponse(*u)
	u.PasswordHash = string(hash)
	u.Status = StatusActive
	u.InvitationToken = nil
	u.InvitationExpiry = nil

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("accept invitation persist failed", zap.String("sub_user_id", u.ID.String()), zap.Error(err))
		return SubUserResponse{}, mapRepositoryError(err)
	}

	after := mapToResponse(*u)
	s.logAudit(ctx, "subuser.invitation_accepted", u.ID.String(), u.CompanyID.String(), u.ID.String(), before, after, audit.CategoryUserManagement, audit.SeverityLow)
	return after, nil
}

// Activate is the admin path from pending to active that bypasses the invitation.
func (s *service) Activate(ctx context.Context, caller domain.Caller, id string) (SubUserResponse, error) {
	companyID, actorID := caller.CompanyID, caller.UserID
	u, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SubUserResponse{}, mapRepositoryError(err)
	}
	if err := s.authorize(ctx, caller, permission.ActionApprove, *u); err != nil {
		return SubUserResponse{}, err
	}
	if u.Status != StatusPending {
		s.logger.Warn("activate sub-user invalid status",
			zap.String("sub_user_id", id),
			zap.String("status", u.Status),
		)
		return SubUserResponse{}, subusererrors.ErrInvalidStatusTransition
	}

	before := mapToResponse(*u)
	u.Status = StatusActive
	u.InvitationToken = nil
	u.InvitationExpiry = nil

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("activate sub-user persist failed", zap.String("sub_user_id", id), zap.Error(err))
		return SubUserResponse{}, mapRepositoryError(err)
	}

	after := mapToResponse(*u)
	s.logAudit(ctx, "subuser.activated", actorID, companyID, id, before, after, audit.CategoryUserManagement, audit.SeverityMedium)
	s.notifyStatus(ctx, companyID, id, StatusActive)
	return after, nil
}

func (s *service) UpdateStatus(ctx context.Context, caller domain.Caller, id, status string) (SubUserResponse, error) {
	companyID, actorID := caller.CompanyID, caller.UserID
	s.logger.Debug("update sub-user status requested",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("sub_user_id", id),
		zap.String("status", status),
	)

	u, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SubUserResponse{}, mapRepositoryError(err)
	}
	if err := s.authorize(ctx, caller, permission.ActionUpdate, *u); err != nil {
		return SubUserResponse{}, err
	}
	if !isAllowedStatusTransition(u.Status, status) {
		s.logger.Warn("update sub-user status invalid transition",
			zap.String("sub_user_id", id),
			zap.String("from", u.Status),
			zap.String("to", status),
		)
		return SubUserResponse{}, subusererrors.ErrInvalidStatusTransition
	}

	before := mapToResponse(*u)
	u.Status = status
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("update sub-user status persist failed", zap.String("sub_user_id", id), zap.Error(err))
		return SubUserResponse{}, mapRepositoryError(err)
	}

	after := mapToResponse(*u)
	severity := audit.SeverityMedium
	if status == StatusSuspended {
		severity = audit.SeverityHigh
	}
	s.logAudit(ctx, "subuser.status_changed", actorID, companyID, id, before, after, audit.CategoryUserManagement, severity)
	s.notifyStatus(ctx, companyID, id, status)
	return after, nil
}

// BulkUpdateStatus applies the change per sub-user; each success is audited
// on its own and failures do not stop the batch.
func (s *service) BulkUpdateStatus(ctx context.Context, caller domain.Caller, ids []string, status string) (BulkStatusResult, error) {
	result := BulkStatusResult{Updated: []string{}}
	for _, id := range ids {
		if _, err := s.UpdateStatus(ctx, caller, id, status); err != nil {
			if result.Failed == nil {
				result.Failed = map[string]string{}
			}
			result.Failed[id] = err.Error()
			continue
		}
		result.Updated = append(result.Updated, id)
	}

	s.logger.Info("bulk update sub-user status done",
		zap.String("company_id", caller.CompanyID),
		zap.Int("updated", len(result.Updated)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *service) Update(ctx context.Context, caller domain.Caller, id string, patch SubUserPatch) (SubUserResponse, error) {
	companyID, actorID := caller.CompanyID, caller.UserID
	rid := contextutil.GetRequestID(ctx)
	if patch.IsEmpty() {
		return SubUserResponse{}, subusererrors.ErrEmptyPatch
	}
	if patch.CustomRoleID != nil && patch.SystemRole != nil {
		return SubUserResponse{}, subusererrors.ErrRoleRequired
	}
	if patch.changesRole() {
		if err := s.checkRole(ctx, companyID, patch.CustomRoleID, patch.SystemRole); err != nil {
			return SubUserResponse{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update sub-user begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return SubUserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	u, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SubUserResponse{}, mapRepositoryError(err)
	}
	if err := s.authorize(ctx, caller, permission.ActionUpdate, *u); err != nil {
		return SubUserResponse{}, err
	}
	if patch.ReportingTo != nil && *patch.ReportingTo != "" {
		if err := s.checkReportingTo(ctx, qtx, companyID, id, *patch.ReportingTo); err != nil {
			return SubUserResponse{}, err
		}
	}

	before := mapToResponse(*u)
	previousRole := u.RoleRef()
	patch.apply(u)

	if err := qtx.Update(ctx, u); err != nil {
		s.logger.Error("update sub-user persist failed", zap.String("sub_user_id", id), zap.Error(err))
		return SubUserResponse{}, mapRepositoryError(err)
	}
	roleChanged := u.RoleRef() != previousRole
	if roleChanged {
		row := audit.NewRoleAssignment(companyID, id, audit.TargetTypeSubUser, previousRole, u.RoleRef(), actorID, "admin update")
		if err := s.history.WithTx(tx).Create(ctx, row); err != nil {
			s.logger.Error("update sub-user role history failed", zap.Error(err))
			return SubUserResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update sub-user commit failed", zap.String("request_id", rid), zap.Error(err))
		return SubUserResponse{}, err
	}

	after := mapToResponse(*u)
	if roleChanged {
		s.logAudit(ctx, "subuser.role_changed", actorID, companyID, id, before, after, audit.CategoryPermissionChange, audit.SeverityHigh)
		_ = s.notifier.Notify(ctx, notification.Message{
			CompanyID: companyID,
			UserID:    id,
			Title:     "Role updated",
			Message:   "Your role has been changed by an administrator",
			Type:      notification.TypeRoleChange,
		})
	} else {
		s.logAudit(ctx, "subuser.updated", actorID, companyID, id, before, after, audit.CategoryUserManagement, audit.SeverityLow)
	}
	return after, nil
}

// ApplyChanges merges an approved change set inside the caller's transaction.
// The set is validated again against the sub-user's current state.
func (s *service) ApplyChanges(ctx context.Context, tx *sql.Tx, companyID, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error) {
	if cs.IsEmpty() {
		return domain.AppliedChange{}, subusererrors.ErrEmptyPatch
	}
	if cs.CustomRoleID != nil && cs.SystemRole != nil {
		return domain.AppliedChange{}, subusererrors.ErrRoleRequired
	}
	if cs.ChangesRole() {
		if err := s.checkRole(ctx, companyID, cs.CustomRoleID, cs.SystemRole); err != nil {
			return domain.AppliedChange{}, err
		}
	}

	qtx := s.repo.WithTx(tx)
	u, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return domain.AppliedChange{}, mapRepositoryError(err)
	}
	if cs.Status != nil && *cs.Status != u.Status && !isAllowedStatusTransition(u.Status, *cs.Status) {
		return domain.AppliedChange{}, subusererrors.ErrInvalidStatusTransition
	}

	before := mapToResponse(*u)
	previousRole := u.RoleRef()
	patchFromChangeSet(cs).apply(u)
	if cs.Status != nil {
		if u.Status == StatusPending && *cs.Status == StatusActive {
			u.InvitationToken = nil
			u.InvitationExpiry = nil
		}
		u.Status = *cs.Status
	}

	if err := qtx.Update(ctx, u); err != nil {
		s.logger.Error("apply sub-user changes persist failed", zap.String("sub_user_id", id), zap.Error(err))
		return domain.AppliedChange{}, mapRepositoryError(err)
	}
	if u.RoleRef() != previousRole {
		row := audit.NewRoleAssignment(companyID, id, audit.TargetTypeSubUser, previousRole, u.RoleRef(), actorID, reason)
		if err := s.history.WithTx(tx).Create(ctx, row); err != nil {
			return domain.AppliedChange{}, err
		}
	}

	return domain.AppliedChange{Before: before, After: mapToResponse(*u)}, nil
}

func (s *service) Delete(ctx context.Context, caller domain.Caller, id string) error {
	companyID, actorID := caller.CompanyID, caller.UserID
	u, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.authorize(ctx, caller, permission.ActionDelete, *u); err != nil {
		return err
	}
	before := mapToResponse(*u)

	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		s.logger.Error("delete sub-user failed", zap.String("sub_user_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.logAudit(ctx, "subuser.deleted", actorID, companyID, id, before, nil, audit.CategoryUserManagement, audit.SeverityHigh)
	s.logger.Info("delete sub-user success", zap.String("sub_user_id", id))
	return nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (SubUserResponse, error) {
	u, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SubUserResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*u), nil
}

func (s *service) List(ctx context.Context, companyID string, filter ListFilter) ([]SubUserResponse, error) {
	users, err := s.repo.ListByCompany(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("list sub-users failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}
	resp := make([]SubUserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.ExpireInvitations(ctx, now)
	if err != nil {
		s.logger.Error("expire invitations failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired invitations cleared", zap.Int64("count", n))
	}
	return n, nil
}

func (s *service) checkRole(ctx context.Context, companyID string, customRoleID, systemRole *string) error {
	if customRoleID != nil {
		if _, err := uuid.Parse(*customRoleID); err != nil {
			return subusererrors.ErrCustomRoleNotFound
		}
		ok, err := s.roles.CustomRoleActive(ctx, companyID, *customRoleID)
		if err != nil {
			return err
		}
		if !ok {
			return subusererrors.ErrCustomRoleNotFound
		}
	}
	if systemRole != nil {
		ok, err := s.roles.SystemRoleExists(ctx, *systemRole)
		if err != nil {
			return err
		}
		if !ok {
			return subusererrors.ErrSystemRoleNotFound
		}
	}
	return nil
}

// checkReportingTo requires managerID to be a sub-user of the company and
// walks its reporting chain so that selfID never ends up managing itself.
func (s *service) checkReportingTo(ctx context.Context, repo Repository, companyID, selfID, managerID string) error {
	if _, err := uuid.Parse(managerID); err != nil || managerID == selfID {
		return subusererrors.ErrInvalidReportingTo
	}

	seen := make(map[string]bool)
	for cur := managerID; cur != ""; {
		if cur == selfID || seen[cur] {
			s.logger.Warn("reporting chain cycle rejected",
				zap.String("sub_user_id", selfID),
				zap.String("reporting_to", managerID),
				zap.String("loops_at", cur),
			)
			return subusererrors.ErrReportingCycle
		}
		seen[cur] = true

		u, err := repo.FindByIDAndCompany(ctx, companyID, cur)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if cur == managerID {
				return subusererrors.ErrInvalidReportingTo
			}
			// chain leaves the sub-user table, e.g. at the main account
			return nil
		}
		cur = ""
		if u.ReportingTo != nil {
			cur = u.ReportingTo.String()
		}
	}
	return nil
}

// authorize refines the route grant against the account that invited the
// sub-user. Records the caller may not even read are reported as missing.
func (s *service) authorize(ctx context.Context, caller domain.Caller, act permission.Action, u SubUser) error {
	res := access.Resource{OwnerID: u.ParentUserID.String(), CompanyID: u.CompanyID.String()}
	ok, err := s.guard.CanAccess(ctx, caller, permission.ModuleUsers, act, res)
	if err != nil {
		s.logger.Error("sub-user access check failed", zap.String("sub_user_id", u.ID.String()), zap.Error(err))
		return apperror.ErrInternal
	}
	if ok {
		return nil
	}
	readable, err := s.guard.CanAccess(ctx, caller, permission.ModuleUsers, permission.ActionRead, res)
	if err != nil {
		return apperror.ErrInternal
	}
	if !readable {
		return subusererrors.ErrSubUserNotFound
	}
	return apperror.ErrForbidden
}

func (s *service) logAudit(ctx context.Context, action, actorID, companyID, targetID string, before, after any, category, severity string) {
	target := targetID
	_ = s.audit.Log(ctx, audit.Entry{
		Action:         action,
		PerformedBy:    actorID,
		TargetUser:     &target,
		TargetUserType: audit.TargetTypeSubUser,
		CompanyID:      companyID,
		Details:        audit.NewDetails(before, after),
		Category:       category,
		Severity:       severity,
	})
}

func (s *service) notifyStatus(ctx context.Context, companyID, id, status string) {
	_ = s.notifier.Notify(ctx, notification.Message{
		CompanyID: companyID,
		UserID:    id,
		Title:     "Account status changed",
		Message:   "Your account is now " + status,
		Type:      notification.TypeStatusChange,
	})
}

func newInvitationToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func mapToResponse(u SubUser) SubUserResponse {
	resp := SubUserResponse{
		ID:           u.ID.String(),
		ParentUserID: u.ParentUserID.String(),
		CompanyID:    u.CompanyID.String(),
		Email:        u.Email,
		FullName:     u.FullName,
		SystemRole:   u.SystemRole,
		Status:       u.Status,
		Version:      u.Version,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339),
	}
	if u.CustomRoleID != nil {
		v := u.CustomRoleID.String()
		resp.CustomRoleID = &v
	}
	if u.ReportingTo != nil {
		v := u.ReportingTo.String()
		resp.ReportingTo = &v
	}
	if u.InvitationExpiry != nil {
		v := u.InvitationExpiry.Format(time.RFC3339)
		resp.InvitationExpiry = &v
	}
	return resp
}
