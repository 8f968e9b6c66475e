package audit

import (
	"context"
	"time"

	auditerrors "go-diligince/internal/audit/errors"
	"go-diligince/internal/shared/contextutil"
	"go-diligince/internal/shared/ids"
	"go-diligince/internal/shared/metrics"

	"go.uber.org/zap"
)

// Logger is the write side used by mutating services. A returned error means
// the entry was diverted to the fallback channel; callers on best-effort
// paths discard it explicitly.
type Logger interface {
	Log(ctx context.Context, e Entry) error
}

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type Service interface {
	Logger
	List(ctx context.Context, filter ListFilter) ([]EntryResponse, error)
	RoleHistory(ctx context.Context, companyID, userID string) ([]RoleAssignmentResponse, error)
}

type service struct {
	repo     Repository
	history  HistoryRepository
	fallback FallbackLogger
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, history HistoryRepository, fallback FallbackLogger, logger ...*zap.Logger) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	if fallback == nil {
		fallback = NewZapFallback(logger...)
	}
	return &service{
		repo:     repo,
		history:  history,
		fallback: fallback,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) Log(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = ids.NewSortable()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.Severity == "" {
		e.Severity = SeverityMedium
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeSuccess
	}

	if err := validateEntry(e); err != nil {
		s.divert(ctx, e, err)
		return err
	}

	if err := s.repo.Create(ctx, &e); err != nil {
		s.divert(ctx, e, err)
		return err
	}

	s.logger.Debug("audit entry written",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("audit_id", e.ID),
		zap.String("action", e.Action),
	)
	return nil
}

func (s *service) divert(ctx context.Context, e Entry, cause error) {
	metrics.AuditWriteFailures.Inc()
	s.fallback.Record(e, cause)
	s.logger.Error("audit write failed",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("audit_id", e.ID),
		zap.String("action", e.Action),
		zap.Error(cause),
	)
}

func validateEntry(e Entry) error {
	if e.Action == "" || e.PerformedBy == "" || e.CompanyID == "" || e.Category == "" {
		return auditerrors.ErrIncompleteEntry
	}
	switch e.Category {
	case CategoryRoleManagement, CategoryUserManagement, CategoryPermissionChange, CategoryApproval:
		return nil
	default:
		return auditerrors.ErrInvalidCategory
	}
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]EntryResponse, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list audit entries failed", zap.String("company_id", filter.CompanyID), zap.Error(err))
		return nil, err
	}

	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func (s *service) RoleHistory(ctx context.Context, companyID, userID string) ([]RoleAssignmentResponse, error) {
	rows, err := s.history.ListByUser(ctx, companyID, userID)
	if err != nil {
		s.logger.Error("list role history failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := make([]RoleAssignmentResponse, len(rows))
	for i, h := range rows {
		resp[i] = RoleAssignmentResponse{
			ID:            h.ID,
			UserID:        h.UserID,
			UserType:      h.UserType,
			PreviousRole:  h.PreviousRole,
			NewRole:       h.NewRole,
			AssignedBy:    h.AssignedBy,
			Reason:        h.Reason,
			EffectiveDate: h.EffectiveDate.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// NewRoleAssignment stamps id and effective date on a history row.
func NewRoleAssignment(companyID, userID, userType, previousRole, newRole, assignedBy, reason string) *RoleAssignment {
	return &RoleAssignment{
		ID:            ids.NewSortable(),
		UserID:        userID,
		UserType:      userType,
		PreviousRole:  previousRole,
		NewRole:       newRole,
		AssignedBy:    assignedBy,
		CompanyID:     companyID,
		Reason:        reason,
		EffectiveDate: time.Now().UTC(),
	}
}

func mapToResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		Action:         e.Action,
		PerformedBy:    e.PerformedBy,
		TargetUser:     e.TargetUser,
		TargetUserType: e.TargetUserType,
		CompanyID:      e.CompanyID,
		Details:        e.Details,
		Severity:       e.Severity,
		Category:       e.Category,
		Outcome:        e.Outcome,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
}
