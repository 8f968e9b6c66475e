package requirement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-diligince/internal/access"
	"go-diligince/internal/approval"
	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/notification"
	"go-diligince/internal/permission"
	requirementerrors "go-diligince/internal/requirement/errors"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/counter"
	"go-diligince/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=requirement_service.go -destination=mock/requirement_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateRequirementRequest) (RequirementResponse, error)
	Submit(ctx context.Context, caller domain.Caller, id string, steps []string) (RequirementResponse, error)
	ApproveStep(ctx context.Context, caller domain.Caller, id, comments string) (RequirementResponse, error)
	SkipStep(ctx context.Context, caller domain.Caller, id, stepName, comments string) (RequirementResponse, error)
	Reject(ctx context.Context, caller domain.Caller, id, reason string) (RequirementResponse, error)
	Publish(ctx context.Context, caller domain.Caller, id string) (RequirementResponse, error)
	Close(ctx context.Context, caller domain.Caller, id string) (RequirementResponse, error)
	Get(ctx context.Context, caller domain.Caller, id string) (RequirementResponse, error)
	List(ctx context.Context, caller domain.Caller, filter ListFilter) ([]RequirementResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	counter  counter.Repository
	guard    *access.Guard
	audit    audit.Logger
	notifier notification.Notifier
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	guard *access.Guard,
	auditLogger audit.Logger,
	notifier notification.Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("requirement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("requirement.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		counter:  counterRepo,
		guard:    guard,
		audit:    auditLogger,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateRequirementRequest) (RequirementResponse, error) {
	s.logger.Debug("create requirement requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return RequirementResponse{}, requirementerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RequirementResponse{}, requirementerrors.ErrInvalidActorID
	}

	seq, err := s.counter.GetNextValue(ctx, companyID, counter.TypeRequirementNumber)
	if err != nil {
		s.logger.Error("create requirement number allocation failed", zap.Error(err))
		return RequirementResponse{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	r := &Requirement{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		Number:      fmt.Sprintf("REQ-%06d", seq),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Budget:      req.Budget,
		Currency:    currency,
		CreatedBy:   actorUUID,
		Status:      StatusDraft,
		Version:     1,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Error("create requirement persist failed", zap.Error(err))
		return RequirementResponse{}, mapRepositoryError(err)
	}

	resp := mapToResponse(*r)
	s.logAudit(ctx, "requirement.created", actorID, companyID, nil, resp, audit.SeverityLow)
	s.logger.Info("create requirement success", zap.String("requirement_id", resp.ID), zap.String("number", r.Number))
	return resp, nil
}

func (s *service) Submit(ctx context.Context, caller domain.Caller, id string, steps []string) (RequirementResponse, error) {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	checklist, err := approval.NewSteps(steps...)
	if err != nil {
		return RequirementResponse{}, mapStepError(err)
	}

	resp, _, err := s.mutate(ctx, caller, id, permission.ActionUpdate, "requirement.submitted", audit.SeverityLow, func(r *Requirement) error {
		if !isAllowedStatusTransition(r.Status, StatusPendingApproval) {
			return requirementerrors.ErrInvalidStatusTransition
		}
		r.Status = StatusPendingApproval
		r.ApprovalSteps = checklist
		r.RejectionReason = nil
		return nil
	})
	return resp, err
}

// ApproveStep completes the first pending step. With no pending step left it
// returns the stored requirement untouched so a retried call is harmless.
func (s *service) ApproveStep(ctx context.Context, caller domain.Caller, id, comments string) (RequirementResponse, error) {
	var adv approval.Advance
	resp, changed, err := s.mutate(ctx, caller, id, permission.ActionApprove, "requirement.step_approved", audit.SeverityMedium, func(r *Requirement) error {
		if r.Status == StatusDraft {
			return requirementerrors.ErrNotPendingApproval
		}
		if r.ApprovalSteps.FirstPending() < 0 {
			return errUnchanged
		}
		if r.Status != StatusPendingApproval {
			return requirementerrors.ErrNotPendingApproval
		}
		adv = r.ApprovalSteps.Advance(caller.UserID, comments, s.now())
		if adv.Finished {
			now := s.now()
			r.Status = StatusApproved
			r.ApprovedAt = &now
		}
		return nil
	})
	if err != nil || !changed {
		return resp, err
	}

	metrics.ApprovalStepsCompleted.WithLabelValues("requirement", approval.StepCompleted).Inc()
	s.logger.Info("requirement step approved",
		zap.String("requirement_id", id),
		zap.String("step", adv.StepName),
		zap.Bool("finished", adv.Finished),
	)
	if adv.Finished {
		s.notifyCreator(ctx, resp, "Requirement approved", fmt.Sprintf("%s has completed every approval step", resp.Number))
	}
	return resp, nil
}

func (s *service) SkipStep(ctx context.Context, caller domain.Caller, id, stepName, comments string) (RequirementResponse, error) {
	resp, _, err := s.mutate(ctx, caller, id, permission.ActionApprove, "requirement.step_skipped", audit.SeverityMedium, func(r *Requirement) error {
		if r.Status != StatusPendingApproval {
			return requirementerrors.ErrNotPendingApproval
		}
		return mapStepError(r.ApprovalSteps.Skip(stepName, caller.UserID, comments, s.now()))
	})
	if err != nil {
		return RequirementResponse{}, err
	}
	metrics.ApprovalStepsCompleted.WithLabelValues("requirement", approval.StepSkipped).Inc()
	return resp, nil
}

func (s *service) Reject(ctx context.Context, caller domain.Caller, id, reason string) (RequirementResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return RequirementResponse{}, requirementerrors.ErrRejectionReasonRequired
	}

	resp, _, err := s.mutate(ctx, caller, id, permission.ActionApprove, "requirement.rejected", audit.SeverityMedium, func(r *Requirement) error {
		if !isAllowedStatusTransition(r.Status, StatusRejected) {
			return requirementerrors.ErrInvalidStatusTransition
		}
		r.Status = StatusRejected
		r.RejectionReason = &reason
		return nil
	})
	if err != nil {
		return RequirementResponse{}, err
	}

	s.notifyCreator(ctx, resp, "Requirement rejected", fmt.Sprintf("%s was rejected: %s", resp.Number, reason))
	return resp, nil
}

func (s *service) Publish(ctx context.Context, caller domain.Caller, id string) (RequirementResponse, error) {
	resp, _, err := s.mutate(ctx, caller, id, permission.ActionUpdate, "requirement.published", audit.SeverityLow, func(r *Requirement) error {
		if !isAllowedStatusTransition(r.Status, StatusPublished) {
			return requirementerrors.ErrInvalidStatusTransition
		}
		now := s.now()
		r.Status = StatusPublished
		r.PublishedAt = &now
		return nil
	})
	return resp, err
}

func (s *service) Close(ctx context.Context, caller domain.Caller, id string) (RequirementResponse, error) {
	resp, _, err := s.mutate(ctx, caller, id, permission.ActionUpdate, "requirement.closed", audit.SeverityLow, func(r *Requirement) error {
		if !isAllowedStatusTransition(r.Status, StatusClosed) {
			return requirementerrors.ErrInvalidStatusTransition
		}
		now := s.now()
		r.Status = StatusClosed
		r.ClosedAt = &now
		return nil
	})
	return resp, err
}

// Get answers NotFound rather than Forbidden when the caller's grant does not
// reach the requirement.
func (s *service) Get(ctx context.Context, caller domain.Caller, id string) (RequirementResponse, error) {
	r, err := s.repo.FindByIDAndCompany(ctx, caller.CompanyID, id)
	if err != nil {
		return RequirementResponse{}, mapRepositoryError(err)
	}

	ok, err := s.guard.CanAccess(ctx, caller, permission.ModuleRequirements, permission.ActionRead, resourceOf(*r))
	if err != nil {
		s.logger.Error("requirement access check failed", zap.String("requirement_id", id), zap.Error(err))
		return RequirementResponse{}, apperror.ErrInternal
	}
	if !ok {
		return RequirementResponse{}, requirementerrors.ErrRequirementNotFound
	}
	return mapToResponse(*r), nil
}

func (s *service) List(ctx context.Context, caller domain.Caller, filter ListFilter) ([]RequirementResponse, error) {
	reqs, err := s.repo.FindAllByCompany(ctx, caller.CompanyID, filter)
	if err != nil {
		s.logger.Error("list requirements failed", zap.Error(err))
		return nil, err
	}

	visible, err := access.Filter(ctx, s.guard, caller, permission.ModuleRequirements, permission.ActionRead, reqs, resourceOf)
	if err != nil {
		s.logger.Error("requirement access filter failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	resp := make([]RequirementResponse, len(visible))
	for i, r := range visible {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

// errUnchanged tells mutate to return the loaded requirement without writing.
var errUnchanged = errors.New("requirement unchanged")

// mutate loads the requirement inside a transaction, checks the caller's
// grant against its owner, applies fn and writes it back with a version
// check. The audit entry is written after commit. changed is false when fn
// left the requirement as it was.
func (s *service) mutate(
	ctx context.Context,
	caller domain.Caller,
	id string,
	act permission.Action,
	action, severity string,
	fn func(r *Requirement) error,
) (RequirementResponse, bool, error) {
	s.logger.Debug("requirement mutation requested",
		zap.String("requirement_id", id),
		zap.String("action", action),
		zap.String("actor_id", caller.UserID),
	)
	if _, err := uuid.Parse(caller.CompanyID); err != nil {
		return RequirementResponse{}, false, requirementerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(caller.UserID); err != nil {
		return RequirementResponse{}, false, requirementerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("requirement mutation begin tx failed", zap.Error(err))
		return RequirementResponse{}, false, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	r, err := qtx.FindByIDAndCompany(ctx, caller.CompanyID, id)
	if err != nil {
		return RequirementResponse{}, false, mapRepositoryError(err)
	}
	if err := s.authorize(ctx, caller, act, *r); err != nil {
		return RequirementResponse{}, false, err
	}

	before := mapToResponse(*r)
	r.ApprovalSteps = r.ApprovalSteps.Clone()
	if err := fn(r); err != nil {
		if errors.Is(err, errUnchanged) {
			s.logger.Info("requirement mutation had nothing to do",
				zap.String("requirement_id", id),
				zap.String("action", action),
			)
			return before, false, nil
		}
		s.logger.Warn("requirement mutation rejected",
			zap.String("requirement_id", id),
			zap.String("action", action),
			zap.String("status", r.Status),
			zap.Error(err),
		)
		return RequirementResponse{}, false, err
	}

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("requirement mutation persist failed", zap.String("requirement_id", id), zap.Error(err))
		return RequirementResponse{}, false, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("requirement mutation commit failed", zap.String("requirement_id", id), zap.Error(err))
		return RequirementResponse{}, false, err
	}

	after := mapToResponse(*r)
	s.logAudit(ctx, action, caller.UserID, caller.CompanyID, before, after, severity)
	s.logger.Info("requirement mutation success",
		zap.String("requirement_id", id),
		zap.String("action", action),
		zap.String("status", r.Status),
	)
	return after, true, nil
}

// authorize refines the route check with the requirement's owner. A caller
// who cannot even read the requirement gets NotFound.
func (s *service) authorize(ctx context.Context, caller domain.Caller, act permission.Action, r Requirement) error {
	ok, err := s.guard.CanAccess(ctx, caller, permission.ModuleRequirements, act, resourceOf(r))
	if err != nil {
		s.logger.Error("requirement access check failed", zap.String("requirement_id", r.ID.String()), zap.Error(err))
		return apperror.ErrInternal
	}
	if ok {
		return nil
	}
	readable, err := s.guard.CanAccess(ctx, caller, permission.ModuleRequirements, permission.ActionRead, resourceOf(r))
	if err != nil {
		s.logger.Error("requirement access check failed", zap.String("requirement_id", r.ID.String()), zap.Error(err))
		return apperror.ErrInternal
	}
	if !readable {
		return requirementerrors.ErrRequirementNotFound
	}
	return apperror.ErrForbidden
}

func (s *service) logAudit(ctx context.Context, action, actorID, companyID string, before, after any, severity string) {
	_ = s.audit.Log(ctx, audit.Entry{
		Action:      action,
		PerformedBy: actorID,
		CompanyID:   companyID,
		Details:     audit.NewDetails(before, after),
		Category:    audit.CategoryApproval,
		Severity:    severity,
	})
}

func (s *service) notifyCreator(ctx context.Context, r RequirementResponse, title, message string) {
	_ = s.notifier.Notify(ctx, notification.Message{
		CompanyID: r.CompanyID,
		UserID:    r.CreatedBy,
		Title:     title,
		Message:   message,
		Type:      notification.TypeApproval,
	})
}

func resourceOf(r Requirement) access.Resource {
	return access.Resource{OwnerID: r.CreatedBy.String(), CompanyID: r.CompanyID.String()}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToResponse(r Requirement) RequirementResponse {
	completed, total := r.ApprovalSteps.Progress()
	steps := r.ApprovalSteps
	if steps == nil {
		steps = approval.Steps{}
	}
	return RequirementResponse{
		ID:              r.ID.String(),
		CompanyID:       r.CompanyID.String(),
		Number:          r.Number,
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Budget:          r.Budget,
		Currency:        r.Currency,
		CreatedBy:       r.CreatedBy.String(),
		Status:          r.Status,
		ApprovalSteps:   steps,
		StepsCompleted:  completed,
		StepsTotal:      total,
		RejectionReason: r.RejectionReason,
		ApprovedAt:      formatTime(r.ApprovedAt),
		PublishedAt:     formatTime(r.PublishedAt),
		ClosedAt:        formatTime(r.ClosedAt),
		Version:         r.Version,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}
