package purchaseorder_test

import (
	"context"
	"testing"
	"time"

	"go-diligince/internal/access"
	"go-diligince/internal/approval"
	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/notification"
	"go-diligince/internal/permission"
	"go-diligince/internal/purchaseorder"
	purchaseordererrors "go-diligince/internal/purchaseorder/errors"
	mock_purchaseorder "go-diligince/internal/purchaseorder/mock"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/counter"
	mock_counter "go-diligince/internal/shared/counter/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type stubRequirements struct{ sourceable bool }

func (s stubRequirements) Sourceable(ctx context.Context, companyID, id string) (bool, error) {
	return s.sourceable, nil
}

type recordingAudit struct{ entries []audit.Entry }

func (r *recordingAudit) Log(ctx context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

type recordingNotifier struct{ messages []notification.Message }

func (r *recordingNotifier) Notify(ctx context.Context, msg notification.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

type allowAll struct{ level permission.Level }

func (a allowAll) Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error) {
	return permission.HasPermission(permission.Grants{
		{Module: permission.ModulePurchaseOrders, Actions: []permission.Action{permission.ActionRead, permission.ActionUpdate, permission.ActionApprove}, Level: a.level},
	}, check.Module, check.Action, check.Level), nil
}

// approveOwnOnly reads across the company but approves only its own orders.
type approveOwnOnly struct{}

func (approveOwnOnly) Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error) {
	return permission.HasPermission(permission.Grants{
		{Module: permission.ModulePurchaseOrders, Actions: []permission.Action{permission.ActionRead}, Level: permission.LevelCompany},
		{Module: permission.ModulePurchaseOrders, Actions: []permission.Action{permission.ActionApprove}, Level: permission.LevelOwn},
	}, check.Module, check.Action, check.Level), nil
}

func callerOf(companyID, userID string) domain.Caller {
	return domain.Caller{UserID: userID, CompanyID: companyID, SystemRole: "buyer"}
}

type poDeps struct {
	sqlMock  sqlmock.Sqlmock
	repo     *mock_purchaseorder.MockRepository
	counter  *mock_counter.MockRepository
	audit    *recordingAudit
	notifier *recordingNotifier
	svc      purchaseorder.Service
}

func newPODeps(t *testing.T, requirements purchaseorder.RequirementLookup) poDeps {
	return newPODepsWith(t, requirements, allowAll{level: permission.LevelCompany})
}

func newPODepsWith(t *testing.T, requirements purchaseorder.RequirementLookup, enforcer access.Enforcer) poDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := poDeps{
		sqlMock:  mock,
		repo:     mock_purchaseorder.NewMockRepository(ctrl),
		counter:  mock_counter.NewMockRepository(ctrl),
		audit:    &recordingAudit{},
		notifier: &recordingNotifier{},
	}
	guard := access.NewGuard(enforcer, nil)
	d.svc = purchaseorder.NewService(db, d.repo, d.counter, requirements, guard, d.audit, d.notifier)
	return d
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()
	companyID, actorID, vendorID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	t.Run("starts pending with default steps", func(t *testing.T) {
		d := newPODeps(t, stubRequirements{})

		d.counter.EXPECT().GetNextValue(gomock.Any(), companyID, counter.TypePurchaseOrderNumber).Return(int64(42), nil)
		d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, po *purchaseorder.PurchaseOrder) error {
			assert.Equal(t, purchaseorder.StatusPendingApproval, po.Status)
			assert.Equal(t, int64(1), po.Version)
			return nil
		})

		resp, err := d.svc.Create(ctx, companyID, actorID, purchaseorder.CreatePurchaseOrderRequest{
			VendorCompanyID: vendorID,
			Amount:          5000,
		})

		require.NoError(t, err)
		assert.Equal(t, "PO-000042", resp.Number)
		assert.Equal(t, "USD", resp.Currency)
		require.Len(t, resp.ApprovalSteps, 2)
		assert.Equal(t, "Procurement Review", resp.ApprovalSteps[0].StepName)
		assert.Len(t, d.audit.entries, 1)
	})

	t.Run("requirement must be sourceable", func(t *testing.T) {
		d := newPODeps(t, stubRequirements{sourceable: false})

		_, err := d.svc.Create(ctx, companyID, actorID, purchaseorder.CreatePurchaseOrderRequest{
			RequirementID:   uuid.NewString(),
			VendorCompanyID: vendorID,
			Amount:          10,
		})

		assert.ErrorIs(t, err, purchaseordererrors.ErrRequirementNotApproved)
	})

	t.Run("duplicate step names", func(t *testing.T) {
		d := newPODeps(t, stubRequirements{})

		_, err := d.svc.Create(ctx, companyID, actorID, purchaseorder.CreatePurchaseOrderRequest{
			VendorCompanyID: vendorID,
			Amount:          10,
			Steps:           []string{"Finance", "finance"},
		})

		assert.ErrorIs(t, err, purchaseordererrors.ErrInvalidSteps)
	})
}

func TestPurchaseOrderService_ApproveStep(t *testing.T) {
	ctx := context.Background()
	companyID, creatorID, approverID := uuid.New(), uuid.New(), uuid.New()
	id := uuid.New()

	load := func(steps approval.Steps) *purchaseorder.PurchaseOrder {
		return &purchaseorder.PurchaseOrder{
			ID:            id,
			CompanyID:     companyID,
			CreatedBy:     creatorID,
			Number:        "PO-000001",
			Status:        purchaseorder.StatusPendingApproval,
			ApprovalSteps: steps,
			Version:       2,
		}
	}

	t.Run("last step approves and notifies", func(t *testing.T) {
		d := newPODeps(t, stubRequirements{})
		steps, _ := approval.NewSteps("Finance")

		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectCommit()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(load(steps), nil)
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, po *purchaseorder.PurchaseOrder) error {
			assert.Equal(t, purchaseorder.StatusApproved, po.Status)
			assert.NotNil(t, po.ApprovedAt)
			po.Version++
			return nil
		})

		resp, err := d.svc.ApproveStep(ctx, callerOf(companyID.String(), approverID.String()), id.String(), "ok")

		require.NoError(t, err)
		assert.Equal(t, purchaseorder.StatusApproved, resp.Status)
		assert.Equal(t, approverID.String(), resp.ApprovalSteps[0].ApprovedBy)
		require.Len(t, d.notifier.messages, 1)
		assert.Equal(t, creatorID.String(), d.notifier.messages[0].UserID)
		require.Len(t, d.audit.entries, 1)
		assert.Equal(t, "purchase_order.step_approved", d.audit.entries[0].Action)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		d := newPODeps(t, stubRequirements{})

		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := d.svc.ApproveStep(ctx, callerOf(companyID.String(), approverID.String()), id.String(), "")

		assert.ErrorIs(t, err, purchaseordererrors.ErrPurchaseOrderNotFound)
	})
}

func TestPurchaseOrderService_ApproveStep_NothingPendingLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	companyID, creatorID, approverID := uuid.New(), uuid.New(), uuid.New()
	id := uuid.New()
	approvedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		steps  func(t *testing.T) approval.Steps
	}{
		{
			name:   "every step completed",
			status: purchaseorder.StatusApproved,
			steps: func(t *testing.T) approval.Steps {
				steps, _ := approval.NewSteps("Finance")
				steps.Advance(approverID.String(), "ok", approvedAt)
				return steps
			},
		},
		{
			name:   "skipped then completed",
			status: purchaseorder.StatusPendingApproval,
			steps: func(t *testing.T) approval.Steps {
				steps, _ := approval.NewSteps("Finance", "Director")
				require.NoError(t, steps.Skip("Finance", creatorID.String(), "not needed", approvedAt))
				steps.Advance(approverID.String(), "ok", approvedAt)
				return steps
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newPODeps(t, stubRequirements{})
			stored := &purchaseorder.PurchaseOrder{
				ID:            id,
				CompanyID:     companyID,
				CreatedBy:     creatorID,
				Number:        "PO-000007",
				Status:        tc.status,
				ApprovalSteps: tc.steps(t),
				Version:       4,
			}
			snapshot := *stored
			snapshot.ApprovalSteps = stored.ApprovalSteps.Clone()

			d.sqlMock.ExpectBegin()
			d.sqlMock.ExpectRollback()
			d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
			d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(stored, nil)
			d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

			resp, err := d.svc.ApproveStep(ctx, callerOf(companyID.String(), approverID.String()), id.String(), "again")

			require.NoError(t, err)
			assert.Equal(t, snapshot, *stored)
			assert.Equal(t, tc.status, resp.Status)
			assert.Equal(t, int64(4), resp.Version)
			assert.Empty(t, d.audit.entries)
			assert.Empty(t, d.notifier.messages)
			assert.NoError(t, d.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestPurchaseOrderService_MutationsRespectOwnership(t *testing.T) {
	ctx := context.Background()
	companyID, creatorID, otherID := uuid.New(), uuid.New(), uuid.New()
	id := uuid.New()

	load := func() *purchaseorder.PurchaseOrder {
		steps, _ := approval.NewSteps("Finance")
		return &purchaseorder.PurchaseOrder{
			ID:            id,
			CompanyID:     companyID,
			CreatedBy:     creatorID,
			Number:        "PO-000009",
			Status:        purchaseorder.StatusPendingApproval,
			ApprovalSteps: steps,
			Version:       1,
		}
	}

	t.Run("own level hides another user's order", func(t *testing.T) {
		d := newPODepsWith(t, stubRequirements{}, allowAll{level: permission.LevelOwn})
		stored := load()

		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo).Times(2)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(stored, nil).Times(2)
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

		_, err := d.svc.ApproveStep(ctx, callerOf(companyID.String(), otherID.String()), id.String(), "")
		assert.ErrorIs(t, err, purchaseordererrors.ErrPurchaseOrderNotFound)

		_, err = d.svc.Cancel(ctx, callerOf(companyID.String(), otherID.String()), id.String())
		assert.ErrorIs(t, err, purchaseordererrors.ErrPurchaseOrderNotFound)

		assert.Equal(t, purchaseorder.StatusPendingApproval, stored.Status)
		assert.Empty(t, d.audit.entries)
		assert.Empty(t, d.notifier.messages)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("own level lets the creator approve", func(t *testing.T) {
		d := newPODepsWith(t, stubRequirements{}, allowAll{level: permission.LevelOwn})

		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectCommit()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(load(), nil)
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := d.svc.ApproveStep(ctx, callerOf(companyID.String(), creatorID.String()), id.String(), "")

		require.NoError(t, err)
		assert.Equal(t, purchaseorder.StatusApproved, resp.Status)
	})

	t.Run("visible but not approvable is forbidden", func(t *testing.T) {
		d := newPODepsWith(t, stubRequirements{}, approveOwnOnly{})

		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(load(), nil)

		_, err := d.svc.Reject(ctx, callerOf(companyID.String(), otherID.String()), id.String(), "too expensive")

		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.Empty(t, d.audit.entries)
		assert.Empty(t, d.notifier.messages)
	})
}
