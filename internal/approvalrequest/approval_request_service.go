package approvalrequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	approvalrequesterrors "go-diligince/internal/approvalrequest/errors"
	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/notification"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_request_service.go -destination=mock/approval_request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateApprovalRequest) (ApprovalRequestResponse, error)
	Process(ctx context.Context, companyID, actorID, id, action, comments string) (ApprovalRequestResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (ApprovalRequestResponse, error)
	Get(ctx context.Context, companyID, id string) (ApprovalRequestResponse, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]ApprovalRequestResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	targets  Targets
	audit    audit.Logger
	notifier notification.Notifier
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	targets Targets,
	auditLogger audit.Logger,
	notifier notification.Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approvalrequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approvalrequest.service")
	}
	v := validator.New()
	apperror.RegisterJSONTagNames(v)
	return &service{
		db:       db,
		repo:     repo,
		targets:  targets,
		audit:    auditLogger,
		notifier: notifier,
		validate: v,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

// Create records a pending change. Nothing is applied to the target until the
// request is approved.
func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateApprovalRequest) (ApprovalRequestResponse, error) {
	s.logger.Debug("create approval request",
		zap.String("company_id", companyID),
		zap.String("request_type", req.RequestType),
		zap.String("target_user_id", req.TargetUserID),
	)

	target, ok := s.targets[req.TargetUserType]
	if !ok {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrInvalidTargetType
	}
	if err := s.validateChangeSet(req.RequestType, req.TargetUserType, req.RequestData); err != nil {
		s.logger.Warn("approval request change set rejected", zap.Error(err))
		return ApprovalRequestResponse{}, err
	}

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrInvalidID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrInvalidID
	}
	targetUUID, err := uuid.Parse(req.TargetUserID)
	if err != nil {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrInvalidID
	}

	if err := target.lookup(ctx, companyID, req.TargetUserID); err != nil {
		return ApprovalRequestResponse{}, err
	}

	level := req.ApprovalLevel
	if level == 0 {
		level = 1
	}
	approvers, err := buildApprovers(actorID, req.ApproverIDs, level)
	if err != nil {
		return ApprovalRequestResponse{}, err
	}

	ar := &UserApprovalRequest{
		ID:             uuid.New(),
		CompanyID:      companyUUID,
		RequestType:    req.RequestType,
		TargetUserID:   targetUUID,
		TargetUserType: req.TargetUserType,
		RequestData:    req.RequestData,
		Reason:         strings.TrimSpace(req.Reason),
		ApprovalLevel:  level,
		Approvers:      approvers,
		Status:         StatusPending,
		RequestedBy:    actorUUID,
		Version:        1,
	}
	if err := s.repo.Create(ctx, ar); err != nil {
		s.logger.Error("create approval request persist failed", zap.Error(err))
		return ApprovalRequestResponse{}, mapRepositoryError(err)
	}

	resp := mapToResponse(*ar)
	targetID := req.TargetUserID
	_ = s.audit.Log(ctx, audit.Entry{
		Action:         "approval_request.created",
		PerformedBy:    actorID,
		TargetUser:     &targetID,
		TargetUserType: req.TargetUserType,
		CompanyID:      companyID,
		Details:        audit.NewDetails(nil, resp),
		Category:       audit.CategoryApproval,
		Severity:       audit.SeverityMedium,
	})
	for _, a := range approvers {
		_ = s.notifier.Notify(ctx, notification.Message{
			CompanyID: companyID,
			UserID:    a.UserID,
			Title:     "Approval requested",
			Message:   fmt.Sprintf("A %s request is waiting for your decision", humanType(req.RequestType)),
			Type:      notification.TypeApproval,
		})
	}

	s.logger.Info("create approval request success", zap.String("request_id", resp.ID))
	return resp, nil
}

// Process approves or rejects a pending request. Approval merges the change
// set onto the target in the same transaction as the status change.
func (s *service) Process(ctx context.Context, companyID, actorID, id, action, comments string) (ApprovalRequestResponse, error) {
	if action != ActionApprove && action != ActionReject {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrInvalidAction
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("process approval request begin tx failed", zap.Error(err))
		return ApprovalRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ar, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ApprovalRequestResponse{}, mapRepositoryError(err)
	}
	if ar.Status != StatusPending {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrRequestNotPending
	}
	if ar.RequestedBy == actorUUID {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrSelfApproval
	}
	idx, ok := ar.designated(actorID)
	if !ok {
		s.logger.Warn("process approval request by non-approver",
			zap.String("request_id", id),
			zap.String("actor_id", actorID),
		)
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrNotDesignatedApprover
	}

	before := mapToResponse(*ar)
	now := s.now()
	ar.Approvers = cloneApprovers(ar.Approvers)
	if idx >= 0 {
		ar.Approvers[idx].Status = decisionStatus(action)
		ar.Approvers[idx].Comments = comments
		ar.Approvers[idx].ActionDate = &now
	}

	var applied domain.AppliedChange
	switch action {
	case ActionApprove:
		if err := s.validateChangeSet(ar.RequestType, ar.TargetUserType, ar.RequestData); err != nil {
			return ApprovalRequestResponse{}, err
		}
		target, ok := s.targets[ar.TargetUserType]
		if !ok {
			return ApprovalRequestResponse{}, approvalrequesterrors.ErrInvalidTargetType
		}
		ar.Status = StatusApproved
		ar.FinalApprover = &actorUUID
		ar.FinalApprovalDate = &now
		applied, err = target.applier.ApplyChanges(ctx, tx, companyID, actorID, ar.TargetUserID.String(), ar.RequestData, ar.Reason)
		if err != nil {
			s.logger.Warn("approval request merge rejected", zap.String("request_id", id), zap.Error(err))
			return ApprovalRequestResponse{}, err
		}
	case ActionReject:
		reason := strings.TrimSpace(comments)
		ar.Status = StatusRejected
		ar.RejectionReason = &reason
	}

	if err := qtx.Update(ctx, ar); err != nil {
		s.logger.Error("process approval request persist failed", zap.String("request_id", id), zap.Error(err))
		return ApprovalRequestResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("process approval request commit failed", zap.Error(err))
		return ApprovalRequestResponse{}, err
	}

	after := mapToResponse(*ar)
	details := audit.NewDetails(before, after)
	if action == ActionApprove {
		details = audit.NewDetails(applied.Before, applied.After)
	}
	targetID := ar.TargetUserID.String()
	_ = s.audit.Log(ctx, audit.Entry{
		Action:         "approval_request." + ar.Status,
		PerformedBy:    actorID,
		TargetUser:     &targetID,
		TargetUserType: ar.TargetUserType,
		CompanyID:      companyID,
		Details:        details,
		Category:       audit.CategoryApproval,
		Severity:       severityFor(ar.RequestType),
	})

	title, message := "Request approved", fmt.Sprintf("Your %s request was approved", humanType(ar.RequestType))
	if ar.Status == StatusRejected {
		title, message = "Request rejected", fmt.Sprintf("Your %s request was rejected", humanType(ar.RequestType))
		if comments != "" {
			message += ": " + comments
		}
	}
	_ = s.notifier.Notify(ctx, notification.Message{
		CompanyID: companyID,
		UserID:    ar.RequestedBy.String(),
		Title:     title,
		Message:   message,
		Type:      notification.TypeApproval,
	})

	s.logger.Info("process approval request success",
		zap.String("request_id", id),
		zap.String("status", ar.Status),
	)
	return after, nil
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (ApprovalRequestResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ApprovalRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ar, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ApprovalRequestResponse{}, mapRepositoryError(err)
	}
	if ar.RequestedBy.String() != actorID {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrNotRequester
	}
	if ar.Status != StatusPending {
		return ApprovalRequestResponse{}, approvalrequesterrors.ErrRequestNotPending
	}

	before := mapToResponse(*ar)
	ar.Status = StatusCancelled
	if err := qtx.Update(ctx, ar); err != nil {
		return ApprovalRequestResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return ApprovalRequestResponse{}, err
	}

	after := mapToResponse(*ar)
	targetID := ar.TargetUserID.String()
	_ = s.audit.Log(ctx, audit.Entry{
		Action:         "approval_request.cancelled",
		PerformedBy:    actorID,
		TargetUser:     &targetID,
		TargetUserType: ar.TargetUserType,
		CompanyID:      companyID,
		Details:        audit.NewDetails(before, after),
		Category:       audit.CategoryApproval,
		Severity:       audit.SeverityLow,
	})
	return after, nil
}

func (s *service) Get(ctx context.Context, companyID, id string) (ApprovalRequestResponse, error) {
	ar, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ApprovalRequestResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*ar), nil
}

func (s *service) List(ctx context.Context, companyID string, filter ListFilter) ([]ApprovalRequestResponse, error) {
	reqs, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("list approval requests failed", zap.Error(err))
		return nil, err
	}
	resp := make([]ApprovalRequestResponse, len(reqs))
	for i, r := range reqs {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

// validateChangeSet checks the set's own constraints and that it carries
// exactly what its request type allows.
func (s *service) validateChangeSet(requestType, targetType string, cs domain.ChangeSet) error {
	if err := s.validate.Struct(cs); err != nil {
		return apperror.MapValidationError(err)
	}
	if cs.IsEmpty() {
		return approvalrequesterrors.ErrChangeSetMismatch
	}

	switch requestType {
	case TypeRoleChange:
		if cs.Status != nil || (cs.SystemRole != nil) == (cs.CustomRoleID != nil) {
			return approvalrequesterrors.ErrChangeSetMismatch
		}
	case TypePermissionChange:
		if cs.CustomRoleID == nil || cs.SystemRole != nil || cs.Status != nil {
			return approvalrequesterrors.ErrChangeSetMismatch
		}
	case TypeStatusChange:
		if cs.Status == nil || cs.ChangesRole() {
			return approvalrequesterrors.ErrChangeSetMismatch
		}
	default:
		return approvalrequesterrors.ErrInvalidRequestType
	}

	if targetType == domain.UserTypeUser && cs.CustomRoleID != nil {
		return approvalrequesterrors.ErrChangeSetMismatch
	}
	return nil
}

func buildApprovers(requesterID string, ids []string, level int) ([]Approver, error) {
	seen := make(map[string]struct{}, len(ids))
	approvers := make([]Approver, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, approvalrequesterrors.ErrInvalidID
		}
		key := parsed.String()
		if key == requesterID {
			return nil, approvalrequesterrors.ErrSelfApproval
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		approvers = append(approvers, Approver{UserID: key, Level: level, Status: StatusPending})
	}
	return approvers, nil
}

func cloneApprovers(in []Approver) []Approver {
	if in == nil {
		return nil
	}
	out := make([]Approver, len(in))
	copy(out, in)
	return out
}

func decisionStatus(action string) string {
	if action == ActionApprove {
		return StatusApproved
	}
	return StatusRejected
}

func severityFor(requestType string) string {
	if requestType == TypeStatusChange {
		return audit.SeverityMedium
	}
	return audit.SeverityHigh
}

func humanType(requestType string) string {
	return strings.ReplaceAll(requestType, "_", " ")
}

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return approvalrequesterrors.ErrRequestNotFound
	case errors.Is(err, dbtx.ErrStaleVersion):
		return apperror.ErrVersionConflict
	default:
		return err
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToResponse(r UserApprovalRequest) ApprovalRequestResponse {
	resp := ApprovalRequestResponse{
		ID:                r.ID.String(),
		CompanyID:         r.CompanyID.String(),
		RequestType:       r.RequestType,
		TargetUserID:      r.TargetUserID.String(),
		TargetUserType:    r.TargetUserType,
		RequestData:       r.RequestData,
		Reason:            r.Reason,
		ApprovalLevel:     r.ApprovalLevel,
		Approvers:         r.Approvers,
		Status:            r.Status,
		RequestedBy:       r.RequestedBy.String(),
		FinalApprovalDate: formatTime(r.FinalApprovalDate),
		RejectionReason:   r.RejectionReason,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if resp.Approvers == nil {
		resp.Approvers = []Approver{}
	}
	if r.FinalApprover != nil {
		v := r.FinalApprover.String()
		resp.FinalApprover = &v
	}
	return resp
}
