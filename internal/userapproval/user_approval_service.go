package userapproval

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-diligince/internal/approval"
	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"
	"go-diligince/internal/shared/metrics"
	"go-diligince/internal/subuser"
	userapprovalerrors "go-diligince/internal/userapproval/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubUsers is the slice of subuser.Service onboarding depends on.
type SubUsers interface {
	GetByID(ctx context.Context, companyID, id string) (subuser.SubUserResponse, error)
	ApplyChanges(ctx context.Context, tx *sql.Tx, companyID, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error)
}

type Service interface {
	Start(ctx context.Context, companyID, actorID, subUserID string, steps []string) (UserApprovalResponse, error)
	ApproveStep(ctx context.Context, companyID, actorID, id, comments string) (UserApprovalResponse, error)
	Get(ctx context.Context, companyID, id string) (UserApprovalResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	subUsers SubUsers
	audit    audit.Logger
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, subUsers SubUsers, auditLogger audit.Logger, logger ...*zap.Logger) Service {
	l := zap.L().Named("userapproval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("userapproval.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		subUsers: subUsers,
		audit:    auditLogger,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) Start(ctx context.Context, companyID, actorID, subUserID string, steps []string) (UserApprovalResponse, error) {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	checklist, err := approval.NewSteps(steps...)
	if err != nil {
		return UserApprovalResponse{}, userapprovalerrors.ErrInvalidSteps
	}

	target, err := s.subUsers.GetByID(ctx, companyID, subUserID)
	if err != nil {
		return UserApprovalResponse{}, err
	}
	if target.Status != subuser.StatusPending {
		return UserApprovalResponse{}, userapprovalerrors.ErrSubUserNotPending
	}

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return UserApprovalResponse{}, apperror.ErrInvalidInput
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return UserApprovalResponse{}, apperror.ErrInvalidInput
	}
	subUserUUID, err := uuid.Parse(target.ID)
	if err != nil {
		return UserApprovalResponse{}, apperror.ErrInvalidInput
	}

	ua := &UserApproval{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		SubUserID: subUserUUID,
		Steps:     checklist,
		Status:    StatusPending,
		StartedBy: actorUUID,
		Version:   1,
	}
	if err := s.repo.Create(ctx, ua); err != nil {
		s.logger.Error("start user approval failed", zap.String("sub_user_id", subUserID), zap.Error(err))
		return UserApprovalResponse{}, mapRepositoryError(err)
	}

	resp := mapToResponse(*ua)
	_ = s.audit.Log(ctx, audit.Entry{
		Action:         "user_approval.started",
		PerformedBy:    actorID,
		TargetUser:     &subUserID,
		TargetUserType: audit.TargetTypeSubUser,
		CompanyID:      companyID,
		Details:        audit.NewDetails(nil, resp),
		Category:       audit.CategoryApproval,
		Severity:       audit.SeverityLow,
	})
	return resp, nil
}

// ApproveStep completes the first pending step. Completing the last one marks
// the checklist approved and activates the sub-user in the same transaction.
// A checklist with nothing pending is returned as stored.
func (s *service) ApproveStep(ctx context.Context, companyID, actorID, id, comments string) (UserApprovalResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserApprovalResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ua, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return UserApprovalResponse{}, mapRepositoryError(err)
	}

	before := mapToResponse(*ua)
	if ua.Status == StatusApproved || ua.Steps.FirstPending() < 0 {
		s.logger.Debug("user approval has no pending step", zap.String("user_approval_id", id))
		return before, nil
	}

	now := s.now()
	ua.Steps = ua.Steps.Clone()
	adv := ua.Steps.Advance(actorID, comments, now)
	if adv.Finished {
		ua.Status = StatusApproved
		ua.ApprovedAt = &now
	}

	if err := qtx.Update(ctx, ua); err != nil {
		return UserApprovalResponse{}, mapRepositoryError(err)
	}

	var activation domain.AppliedChange
	if adv.Finished {
		active := subuser.StatusActive
		activation, err = s.subUsers.ApplyChanges(ctx, tx, companyID, actorID, ua.SubUserID.String(), domain.ChangeSet{Status: &active}, "onboarding approved")
		if err != nil {
			s.logger.Warn("sub-user activation rejected", zap.String("user_approval_id", id), zap.Error(err))
			return UserApprovalResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return UserApprovalResponse{}, err
	}

	metrics.ApprovalStepsCompleted.WithLabelValues("user_approval", approval.StepCompleted).Inc()
	after := mapToResponse(*ua)
	target := ua.SubUserID.String()
	_ = s.audit.Log(ctx, audit.Entry{
		Action:         "user_approval.step_approved",
		PerformedBy:    actorID,
		TargetUser:     &target,
		TargetUserType: audit.TargetTypeSubUser,
		CompanyID:      companyID,
		Details:        audit.NewDetails(before, after),
		Category:       audit.CategoryApproval,
		Severity:       audit.SeverityMedium,
	})
	if adv.Finished {
		_ = s.audit.Log(ctx, audit.Entry{
			Action:         "subuser.activated",
			PerformedBy:    actorID,
			TargetUser:     &target,
			TargetUserType: audit.TargetTypeSubUser,
			CompanyID:      companyID,
			Details:        audit.NewDetails(activation.Before, activation.After),
			Category:       audit.CategoryUserManagement,
			Severity:       audit.SeverityMedium,
		})
		s.logger.Info("onboarding approved", zap.String("sub_user_id", target))
	}
	return after, nil
}

func (s *service) Get(ctx context.Context, companyID, id string) (UserApprovalResponse, error) {
	ua, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return UserApprovalResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*ua), nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userapprovalerrors.ErrUserApprovalNotFound
	}
	if errors.Is(err, dbtx.ErrStaleVersion) {
		return apperror.ErrVersionConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return userapprovalerrors.ErrAlreadyStarted
	}
	return err
}

func mapToResponse(ua UserApproval) UserApprovalResponse {
	completed, total := ua.Steps.Progress()
	resp := UserApprovalResponse{
		ID:             ua.ID.String(),
		CompanyID:      ua.CompanyID.String(),
		SubUserID:      ua.SubUserID.String(),
		Steps:          ua.Steps,
		StepsCompleted: completed,
		StepsTotal:     total,
		Status:         ua.Status,
		StartedBy:      ua.StartedBy.String(),
		Version:        ua.Version,
	}
	if ua.ApprovedAt != nil {
		v := ua.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}
