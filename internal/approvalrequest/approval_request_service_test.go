package approvalrequest_test

import (
	"context"
	"database/sql"
	"testing"

	"go-diligince/internal/approvalrequest"
	approvalrequesterrors "go-diligince/internal/approvalrequest/errors"
	mock_approvalrequest "go-diligince/internal/approvalrequest/mock"
	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/notification"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeApplier struct {
	err     error
	applied []domain.ChangeSet
	txs     []*sql.Tx
}

func (f *fakeApplier) ApplyChanges(ctx context.Context, tx *sql.Tx, companyID, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error) {
	if f.err != nil {
		return domain.AppliedChange{}, f.err
	}
	f.applied = append(f.applied, cs)
	f.txs = append(f.txs, tx)
	return domain.AppliedChange{Before: map[string]any{"role": "buyer"}, After: map[string]any{"role": "admin"}}, nil
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

type directory map[string]bool

func (d directory) get(ctx context.Context, companyID, id string) (struct{}, error) {
	if !d[id] {
		return struct{}{}, gorm.ErrRecordNotFound
	}
	return struct{}{}, nil
}

func str(s string) *string { return &s }

type arDeps struct {
	sqlMock  sqlmock.Sqlmock
	repo     *mock_approvalrequest.MockRepository
	subUsers *fakeApplier
	users    *fakeApplier
	audit    *recordingAudit
	notifier *recordingNotifier
	svc      approvalrequest.Service
}

func newARDeps(t *testing.T, known ...string) arDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir := directory{}
	for _, id := range known {
		dir[id] = true
	}
	d := arDeps{
		sqlMock:  mock,
		repo:     mock_approvalrequest.NewMockRepository(ctrl),
		subUsers: &fakeApplier{},
		users:    &fakeApplier{},
		audit:    &recordingAudit{},
		notifier: &recordingNotifier{},
	}
	targets := approvalrequest.Targets{
		domain.UserTypeSubUser: approvalrequest.NewTarget(dir.get, d.subUsers),
		domain.UserTypeUser:    approvalrequest.NewTarget(dir.get, d.users),
	}
	d.svc = approvalrequest.NewService(db, d.repo, targets, d.audit, d.notifier)
	return d
}

func TestApprovalRequestService_Create(t *testing.T) {
	ctx := context.Background()
	companyID, requester, target := uuid.NewString(), uuid.NewString(), uuid.NewString()
	approver := uuid.NewString()

	t.Run("pending with designated approvers notified", func(t *testing.T) {
		d := newARDeps(t, target)
		d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := d.svc.Create(ctx, companyID, requester, approvalrequest.CreateApprovalRequest{
			RequestType:    approvalrequest.TypeRoleChange,
			TargetUserID:   target,
			TargetUserType: domain.UserTypeSubUser,
			RequestData:    domain.ChangeSet{SystemRole: str("admin")},
			ApproverIDs:    []string{approver, approver},
		})

		require.NoError(t, err)
		assert.Equal(t, approvalrequest.StatusPending, resp.Status)
		assert.Equal(t, 1, resp.ApprovalLevel)
		require.Len(t, resp.Approvers, 1)
		assert.Equal(t, approver, resp.Approvers[0].UserID)
		assert.Empty(t, d.subUsers.applied)
		require.Len(t, d.notifier.messages, 1)
		assert.Equal(t, approver, d.notifier.messages[0].UserID)
		require.Len(t, d.audit.entries, 1)
		assert.Equal(t, "approval_request.created", d.audit.entries[0].Action)
	})

	cases := []struct {
		name string
		req  approvalrequest.CreateApprovalRequest
		want error
	}{
		{
			name: "status in a role change",
			req: approvalrequest.CreateApprovalRequest{
				RequestType: approvalrequest.TypeRoleChange, TargetUserID: target, TargetUserType: domain.UserTypeSubUser,
				RequestData: domain.ChangeSet{SystemRole: str("admin"), Status: str("active")},
			},
			want: approvalrequesterrors.ErrChangeSetMismatch,
		},
		{
			name: "both role kinds",
			req: approvalrequest.CreateApprovalRequest{
				RequestType: approvalrequest.TypeRoleChange, TargetUserID: target, TargetUserType: domain.UserTypeSubUser,
				RequestData: domain.ChangeSet{SystemRole: str("admin"), CustomRoleID: str(uuid.NewString())},
			},
			want: approvalrequesterrors.ErrChangeSetMismatch,
		},
		{
			name: "status change without status",
			req: approvalrequest.CreateApprovalRequest{
				RequestType: approvalrequest.TypeStatusChange, TargetUserID: target, TargetUserType: domain.UserTypeSubUser,
				RequestData: domain.ChangeSet{},
			},
			want: approvalrequesterrors.ErrChangeSetMismatch,
		},
		{
			name: "custom role for a top-level user",
			req: approvalrequest.CreateApprovalRequest{
				RequestType: approvalrequest.TypePermissionChange, TargetUserID: target, TargetUserType: domain.UserTypeUser,
				RequestData: domain.ChangeSet{CustomRoleID: str(uuid.NewString())},
			},
			want: approvalrequesterrors.ErrChangeSetMismatch,
		},
		{
			name: "unknown request type",
			req: approvalrequest.CreateApprovalRequest{
				RequestType: "password_reset", TargetUserID: target, TargetUserType: domain.UserTypeSubUser,
				RequestData: domain.ChangeSet{Status: str("active")},
			},
			want: approvalrequesterrors.ErrInvalidRequestType,
		},
		{
			name: "unknown target type",
			req: approvalrequest.CreateApprovalRequest{
				RequestType: approvalrequest.TypeStatusChange, TargetUserID: target, TargetUserType: "Vendor",
				RequestData: domain.ChangeSet{Status: str("active")},
			},
			want: approvalrequesterrors.ErrInvalidTargetType,
		},
		{
			name: "requester as approver",
			req: approvalrequest.CreateApprovalRequest{
				RequestType: approvalrequest.TypeStatusChange, TargetUserID: target, TargetUserType: domain.UserTypeSubUser,
				RequestData: domain.ChangeSet{Status: str("suspended")}, ApproverIDs: []string{requester},
			},
			want: approvalrequesterrors.ErrSelfApproval,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newARDeps(t, target)
			_, err := d.svc.Create(ctx, companyID, requester, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, d.audit.entries)
		})
	}

	t.Run("invalid status value", func(t *testing.T) {
		d := newARDeps(t, target)
		_, err := d.svc.Create(ctx, companyID, requester, approvalrequest.CreateApprovalRequest{
			RequestType: approvalrequest.TypeStatusChange, TargetUserID: target, TargetUserType: domain.UserTypeSubUser,
			RequestData: domain.ChangeSet{Status: str("archived")},
		})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	})

	t.Run("missing target", func(t *testing.T) {
		d := newARDeps(t)
		_, err := d.svc.Create(ctx, companyID, requester, approvalrequest.CreateApprovalRequest{
			RequestType: approvalrequest.TypeStatusChange, TargetUserID: target, TargetUserType: domain.UserTypeSubUser,
			RequestData: domain.ChangeSet{Status: str("suspended")},
		})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestApprovalRequestService_Process(t *testing.T) {
	ctx := context.Background()
	companyID, requester, target := uuid.New(), uuid.New(), uuid.New()
	approver, outsider := uuid.NewString(), uuid.NewString()
	id := uuid.New()

	pending := func(approvers ...string) *approvalrequest.UserApprovalRequest {
		ar := &approvalrequest.UserApprovalRequest{
			ID:             id,
			CompanyID:      companyID,
			RequestType:    approvalrequest.TypeRoleChange,
			TargetUserID:   target,
			TargetUserType: domain.UserTypeSubUser,
			RequestData:    domain.ChangeSet{SystemRole: str("admin")},
			Reason:         "covering for manager",
			ApprovalLevel:  1,
			Status:         approvalrequest.StatusPending,
			RequestedBy:    requester,
			Version:        1,
		}
		for _, a := range approvers {
			ar.Approvers = append(ar.Approvers, approvalrequest.Approver{UserID: a, Level: 1, Status: approvalrequest.StatusPending})
		}
		return ar
	}

	expectLoad := func(d arDeps, ar *approvalrequest.UserApprovalRequest) {
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(ar, nil)
	}

	t.Run("approve merges onto target in the same tx", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectCommit()
		expectLoad(d, pending(approver))
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, ar *approvalrequest.UserApprovalRequest) error {
			assert.Equal(t, approvalrequest.StatusApproved, ar.Status)
			assert.Equal(t, approvalrequest.StatusApproved, ar.Approvers[0].Status)
			ar.Version++
			return nil
		})

		resp, err := d.svc.Process(ctx, companyID.String(), approver, id.String(), approvalrequest.ActionApprove, "fine")

		require.NoError(t, err)
		assert.Equal(t, approvalrequest.StatusApproved, resp.Status)
		require.NotNil(t, resp.FinalApprover)
		assert.Equal(t, approver, *resp.FinalApprover)
		assert.NotNil(t, resp.FinalApprovalDate)

		require.Len(t, d.subUsers.applied, 1)
		assert.Equal(t, "admin", *d.subUsers.applied[0].SystemRole)
		assert.NotNil(t, d.subUsers.txs[0])
		assert.Empty(t, d.users.applied)

		require.Len(t, d.audit.entries, 1)
		assert.Equal(t, "approval_request.approved", d.audit.entries[0].Action)
		assert.Equal(t, audit.SeverityHigh, d.audit.entries[0].Severity)
		require.Len(t, d.notifier.messages, 1)
		assert.Equal(t, requester.String(), d.notifier.messages[0].UserID)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject records reason without merging", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectCommit()
		expectLoad(d, pending())
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := d.svc.Process(ctx, companyID.String(), outsider, id.String(), approvalrequest.ActionReject, "not justified")

		require.NoError(t, err)
		assert.Equal(t, approvalrequest.StatusRejected, resp.Status)
		require.NotNil(t, resp.RejectionReason)
		assert.Equal(t, "not justified", *resp.RejectionReason)
		assert.Nil(t, resp.FinalApprover)
		assert.Empty(t, d.subUsers.applied)
		require.Len(t, d.audit.entries, 1)
		assert.Equal(t, "approval_request.rejected", d.audit.entries[0].Action)
		require.Len(t, d.notifier.messages, 1)
		assert.Contains(t, d.notifier.messages[0].Message, "not justified")
	})

	t.Run("actor outside the approver list", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		expectLoad(d, pending(approver))

		_, err := d.svc.Process(ctx, companyID.String(), outsider, id.String(), approvalrequest.ActionApprove, "")

		assert.ErrorIs(t, err, approvalrequesterrors.ErrNotDesignatedApprover)
		assert.Empty(t, d.subUsers.applied)
		assert.Empty(t, d.notifier.messages)
	})

	t.Run("requester cannot decide", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		expectLoad(d, pending())

		_, err := d.svc.Process(ctx, companyID.String(), requester.String(), id.String(), approvalrequest.ActionApprove, "")

		assert.ErrorIs(t, err, approvalrequesterrors.ErrSelfApproval)
	})

	t.Run("already processed", func(t *testing.T) {
		d := newARDeps(t)
		ar := pending()
		ar.Status = approvalrequest.StatusRejected
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		expectLoad(d, ar)

		_, err := d.svc.Process(ctx, companyID.String(), approver, id.String(), approvalrequest.ActionApprove, "")

		assert.ErrorIs(t, err, approvalrequesterrors.ErrRequestNotPending)
	})

	t.Run("not found", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := d.svc.Process(ctx, companyID.String(), approver, id.String(), approvalrequest.ActionApprove, "")

		assert.ErrorIs(t, err, approvalrequesterrors.ErrRequestNotFound)
	})

	t.Run("merge failure rolls back", func(t *testing.T) {
		d := newARDeps(t)
		d.subUsers.err = apperror.ErrNotFound
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		expectLoad(d, pending())

		_, err := d.svc.Process(ctx, companyID.String(), approver, id.String(), approvalrequest.ActionApprove, "")

		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Empty(t, d.audit.entries)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("concurrent decision loses", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		expectLoad(d, pending())
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(dbtx.ErrStaleVersion)

		_, err := d.svc.Process(ctx, companyID.String(), approver, id.String(), approvalrequest.ActionReject, "")

		assert.ErrorIs(t, err, apperror.ErrVersionConflict)
		assert.Empty(t, d.notifier.messages)
	})

	t.Run("invalid action", func(t *testing.T) {
		d := newARDeps(t)
		_, err := d.svc.Process(ctx, companyID.String(), approver, id.String(), "escalate", "")
		assert.ErrorIs(t, err, approvalrequesterrors.ErrInvalidAction)
	})
}

func TestApprovalRequestService_Cancel(t *testing.T) {
	ctx := context.Background()
	companyID, requester := uuid.New(), uuid.New()
	id := uuid.New()
	load := func() *approvalrequest.UserApprovalRequest {
		return &approvalrequest.UserApprovalRequest{ID: id, CompanyID: companyID, RequestedBy: requester, Status: approvalrequest.StatusPending, TargetUserID: uuid.New()}
	}

	t.Run("requester cancels", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectCommit()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(load(), nil)
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := d.svc.Cancel(ctx, companyID.String(), requester.String(), id.String())

		require.NoError(t, err)
		assert.Equal(t, approvalrequest.StatusCancelled, resp.Status)
		require.Len(t, d.audit.entries, 1)
	})

	t.Run("someone else", func(t *testing.T) {
		d := newARDeps(t)
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByIDAndCompany(gomock.Any(), companyID.String(), id.String()).Return(load(), nil)

		_, err := d.svc.Cancel(ctx, companyID.String(), uuid.NewString(), id.String())

		assert.ErrorIs(t, err, approvalrequesterrors.ErrNotRequester)
	})
}
