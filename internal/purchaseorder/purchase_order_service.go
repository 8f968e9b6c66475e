package purchaseorder

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
	purchaseordererrors "go-diligince/internal/purchaseorder/errors"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/counter"
	"go-diligince/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequirementLookup is satisfied by requirement.Lookup.
type RequirementLookup interface {
	Sourceable(ctx context.Context, companyID, id string) (bool, error)
}

//go:generate mockgen -source=purchase_order_service.go -destination=mock/purchase_order_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePurchaseOrderRequest) (PurchaseOrderResponse, error)
	ApproveStep(ctx context.Context, caller domain.Caller, id, comments string) (PurchaseOrderResponse, error)
	Reject(ctx context.Context, caller domain.Caller, id, reason string) (PurchaseOrderResponse, error)
	Issue(ctx context.Context, caller domain.Caller, id string) (PurchaseOrderResponse, error)
	Cancel(ctx context.Context, caller domain.Caller, id string) (PurchaseOrderResponse, error)
	Get(ctx context.Context, caller domain.Caller, id string) (PurchaseOrderResponse, error)
	List(ctx context.Context, caller domain.Caller, filter ListFilter) ([]PurchaseOrderResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	counter      counter.Repository
	requirements RequirementLookup
	guard        *access.Guard
	audit        audit.Logger
	notifier     notification.Notifier
	now          func() time.Time
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	requirements RequirementLookup,
	guard *access.Guard,
	auditLogger audit.Logger,
	notifier notification.Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("purchaseorder.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("purchaseorder.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		counter:      counterRepo,
		requirements: requirements,
		guard:        guard,
		audit:        auditLogger,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreatePurchaseOrderRequest) (PurchaseOrderResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PurchaseOrderResponse{}, purchaseordererrors.ErrInvalidID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PurchaseOrderResponse{}, purchaseordererrors.ErrInvalidID
	}
	vendorUUID, err := uuid.Parse(req.VendorCompanyID)
	if err != nil {
		return PurchaseOrderResponse{}, purchaseordererrors.ErrInvalidID
	}

	names := req.Steps
	if len(names) == 0 {
		names = DefaultSteps
	}
	steps, err := approval.NewSteps(names...)
	if err != nil {
		return PurchaseOrderResponse{}, mapRepositoryError(err)
	}

	po := &PurchaseOrder{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		VendorCompanyID: vendorUUID,
		Amount:          req.Amount,
		Currency:        strings.ToUpper(req.Currency),
		Notes:           req.Notes,
		CreatedBy:       actorUUID,
		Status:          StatusPendingApproval,
		ApprovalSteps:   steps,
		Version:         1,
	}
	if po.Currency == "" {
		po.Currency = "USD"
	}

	if req.RequirementID != "" {
		reqUUID, err := uuid.Parse(req.RequirementID)
		if err != nil {
			return PurchaseOrderResponse{}, purchaseordererrors.ErrInvalidID
		}
		ok, err := s.requirements.Sourceable(ctx, companyID, req.RequirementID)
		if err != nil {
			s.logger.Error("purchase order requirement lookup failed", zap.Error(err))
			return PurchaseOrderResponse{}, err
		}
		if !ok {
			return PurchaseOrderResponse{}, purchaseordererrors.ErrRequirementNotApproved
		}
		po.RequirementID = &reqUUID
	}

	seq, err := s.counter.GetNextValue(ctx, companyID, counter.TypePurchaseOrderNumber)
	if err != nil {
		s.logger.Error("purchase order number allocation failed", zap.Error(err))
		return PurchaseOrderResponse{}, err
	}
	po.Number = fmt.Sprintf("PO-%06d", seq)

	if err := s.repo.Create(ctx, po); err != nil {
		s.logger.Error("purchase order persist failed", zap.Error(err))
		return PurchaseOrderResponse{}, mapRepositoryError(err)
	}

	resp := mapToResponse(*po)
	_ = s.audit.Log(ctx, audit.Entry{
		Action:      "purchase_order.created",
		PerformedBy: actorID,
		CompanyID:   companyID,
		Details:     audit.NewDetails(nil, resp),
		Category:    audit.CategoryApproval,
		Severity:    audit.SeverityMedium,
	})
	s.logger.Info("purchase order created", zap.String("purchase_order_id", resp.ID), zap.String("number", po.Number))
	return resp, nil
}

// ApproveStep completes the first pending step. With no pending step left the
// stored order is returned unchanged.
func (s *service) ApproveStep(ctx context.Context, caller domain.Caller, id, comments string) (PurchaseOrderResponse, error) {
	var adv approval.Advance
	resp, changed, err := s.transition(ctx, caller, id, permission.ActionApprove, "purchase_order.step_approved", func(po *PurchaseOrder, now time.Time) error {
		if po.ApprovalSteps.FirstPending() < 0 {
			return errUnchanged
		}
		if po.Status != StatusPendingApproval {
			return purchaseordererrors.ErrInvalidStatusTransition
		}
		adv = po.ApprovalSteps.Advance(caller.UserID, comments, now)
		if adv.Finished {
			po.Status = StatusApproved
			po.ApprovedAt = &now
		}
		return nil
	})
	if err != nil || !changed {
		return resp, err
	}

	metrics.ApprovalStepsCompleted.WithLabelValues("purchase_order", approval.StepCompleted).Inc()
	if adv.Finished {
		_ = s.notifier.Notify(ctx, notification.Message{
			CompanyID: resp.CompanyID,
			UserID:    resp.CreatedBy,
			Title:     "Purchase order approved",
			Message:   fmt.Sprintf("%s is approved and ready to issue", resp.Number),
			Type:      notification.TypeApproval,
		})
	}
	return resp, nil
}

func (s *service) Reject(ctx context.Context, caller domain.Caller, id, reason string) (PurchaseOrderResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return PurchaseOrderResponse{}, purchaseordererrors.ErrRejectionReasonRequired
	}
	resp, _, err := s.transition(ctx, caller, id, permission.ActionApprove, "purchase_order.rejected", func(po *PurchaseOrder, now time.Time) error {
		if !isAllowedStatusTransition(po.Status, StatusRejected) {
			return purchaseordererrors.ErrInvalidStatusTransition
		}
		po.Status = StatusRejected
		po.RejectionReason = &reason
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	_ = s.notifier.Notify(ctx, notification.Message{
		CompanyID: resp.CompanyID,
		UserID:    resp.CreatedBy,
		Title:     "Purchase order rejected",
		Message:   fmt.Sprintf("%s was rejected: %s", resp.Number, reason),
		Type:      notification.TypeApproval,
	})
	return resp, nil
}

func (s *service) Issue(ctx context.Context, caller domain.Caller, id string) (PurchaseOrderResponse, error) {
	resp, _, err := s.transition(ctx, caller, id, permission.ActionUpdate, "purchase_order.issued", func(po *PurchaseOrder, now time.Time) error {
		if !isAllowedStatusTransition(po.Status, StatusIssued) {
			return purchaseordererrors.ErrInvalidStatusTransition
		}
		po.Status = StatusIssued
		po.IssuedAt = &now
		return nil
	})
	return resp, err
}

func (s *service) Cancel(ctx context.Context, caller domain.Caller, id string) (PurchaseOrderResponse, error) {
	resp, _, err := s.transition(ctx, caller, id, permission.ActionUpdate, "purchase_order.cancelled", func(po *PurchaseOrder, now time.Time) error {
		if !isAllowedStatusTransition(po.Status, StatusCancelled) {
			return purchaseordererrors.ErrInvalidStatusTransition
		}
		po.Status = StatusCancelled
		po.CancelledAt = &now
		return nil
	})
	return resp, err
}

func (s *service) Get(ctx context.Context, caller domain.Caller, id string) (PurchaseOrderResponse, error) {
	po, err := s.repo.FindByIDAndCompany(ctx, caller.CompanyID, id)
	if err != nil {
		return PurchaseOrderResponse{}, mapRepositoryError(err)
	}
	ok, err := s.guard.CanAccess(ctx, caller, permission.ModulePurchaseOrders, permission.ActionRead, resourceOf(*po))
	if err != nil {
		return PurchaseOrderResponse{}, apperror.ErrInternal
	}
	if !ok {
		return PurchaseOrderResponse{}, purchaseordererrors.ErrPurchaseOrderNotFound
	}
	return mapToResponse(*po), nil
}

func (s *service) List(ctx context.Context, caller domain.Caller, filter ListFilter) ([]PurchaseOrderResponse, error) {
	pos, err := s.repo.FindAllByCompany(ctx, caller.CompanyID, filter)
	if err != nil {
		s.logger.Error("list purchase orders failed", zap.Error(err))
		return nil, err
	}
	visible, err := access.Filter(ctx, s.guard, caller, permission.ModulePurchaseOrders, permission.ActionRead, pos, resourceOf)
	if err != nil {
		return nil, apperror.ErrInternal
	}

	resp := make([]PurchaseOrderResponse, 0, len(visible))
	for _, po := range visible {
		resp = append(resp, mapToResponse(po))
	}
	return resp, nil
}

var errUnchanged = errors.New("purchase order unchanged")

// transition runs apply on the order inside a transaction once the caller's
// grant has been checked against the order's creator. An apply returning
// errUnchanged ends the call with the stored order and changed=false.
func (s *service) transition(
	ctx context.Context,
	caller domain.Caller,
	id string,
	act permission.Action,
	action string,
	apply func(po *PurchaseOrder, now time.Time) error,
) (PurchaseOrderResponse, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PurchaseOrderResponse{}, false, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	po, err := qtx.FindByIDAndCompany(ctx, caller.CompanyID, id)
	if err != nil {
		return PurchaseOrderResponse{}, false, mapRepositoryError(err)
	}
	if err := s.authorize(ctx, caller, act, *po); err != nil {
		return PurchaseOrderResponse{}, false, err
	}

	before := mapToResponse(*po)
	po.ApprovalSteps = po.ApprovalSteps.Clone()
	if err := apply(po, s.now()); err != nil {
		if errors.Is(err, errUnchanged) {
			return before, false, nil
		}
		s.logger.Warn("purchase order transition rejected",
			zap.String("purchase_order_id", id),
			zap.String("action", action),
			zap.String("status", po.Status),
			zap.Error(err),
		)
		return PurchaseOrderResponse{}, false, err
	}

	if err := qtx.Update(ctx, po); err != nil {
		return PurchaseOrderResponse{}, false, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return PurchaseOrderResponse{}, false, err
	}

	after := mapToResponse(*po)
	_ = s.audit.Log(ctx, audit.Entry{
		Action:      action,
		PerformedBy: caller.UserID,
		CompanyID:   caller.CompanyID,
		Details:     audit.NewDetails(before, after),
		Category:    audit.CategoryApproval,
		Severity:    audit.SeverityMedium,
	})
	s.logger.Info("purchase order transition",
		zap.String("purchase_order_id", id),
		zap.String("action", action),
		zap.String("from", before.Status),
		zap.String("to", after.Status),
	)
	return after, true, nil
}

func (s *service) authorize(ctx context.Context, caller domain.Caller, act permission.Action, po PurchaseOrder) error {
	ok, err := s.guard.CanAccess(ctx, caller, permission.ModulePurchaseOrders, act, resourceOf(po))
	if err != nil {
		return apperror.ErrInternal
	}
	if ok {
		return nil
	}
	readable, err := s.guard.CanAccess(ctx, caller, permission.ModulePurchaseOrders, permission.ActionRead, resourceOf(po))
	if err != nil {
		return apperror.ErrInternal
	}
	if !readable {
		return purchaseordererrors.ErrPurchaseOrderNotFound
	}
	return apperror.ErrForbidden
}

func resourceOf(po PurchaseOrder) access.Resource {
	return access.Resource{OwnerID: po.CreatedBy.String(), CompanyID: po.CompanyID.String()}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToResponse(po PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:              po.ID.String(),
		CompanyID:       po.CompanyID.String(),
		Number:          po.Number,
		VendorCompanyID: po.VendorCompanyID.String(),
		Amount:          po.Amount,
		Currency:        po.Currency,
		Notes:           po.Notes,
		CreatedBy:       po.CreatedBy.String(),
		Status:          po.Status,
		ApprovalSteps:   po.ApprovalSteps,
		RejectionReason: po.RejectionReason,
		ApprovedAt:      formatTime(po.ApprovedAt),
		IssuedAt:        formatTime(po.IssuedAt),
		CancelledAt:     formatTime(po.CancelledAt),
		Version:         po.Version,
		CreatedAt:       po.CreatedAt.Format(time.RFC3339),
	}
	if po.RequirementID != nil {
		rid := po.RequirementID.String()
		resp.RequirementID = &rid
	}
	return resp
}
