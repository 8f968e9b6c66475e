package subuser_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"go-diligince/internal/access"
	"go-diligince/internal/audit"
	"go-diligince/internal/domain"
	"go-diligince/internal/notification"
	"go-diligince/internal/permission"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"
	"go-diligince/internal/subuser"
	subusererrors "go-diligince/internal/subuser/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type memorySubUserRepository struct {
	mu    sync.Mutex
	users map[string]subuser.SubUser
}

func newMemorySubUserRepository() *memorySubUserRepository {
	return &memorySubUserRepository{users: map[string]subuser.SubUser{}}
}

func (m *memorySubUserRepository) WithTx(tx *sql.Tx) subuser.Repository { return m }

func (m *memorySubUserRepository) Create(ctx context.Context, u *subuser.SubUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID.String()] = *u
	return nil
}

func (m *memorySubUserRepository) Update(ctx context.Context, u *subuser.SubUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[u.ID.String()]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != u.Version {
		return dbtx.ErrStaleVersion
	}
	u.Version++
	m.users[u.ID.String()] = *u
	return nil
}

func (m *memorySubUserRepository) Delete(ctx context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.CompanyID.String() != companyID {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memorySubUserRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*subuser.SubUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.CompanyID.String() != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *memorySubUserRepository) FindByEmail(ctx context.Context, email string) (*subuser.SubUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memorySubUserRepository) FindByInvitationToken(ctx context.Context, token string) (*subuser.SubUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.InvitationToken != nil && *u.InvitationToken == token {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memorySubUserRepository) ListByCompany(ctx context.Context, companyID string, filter subuser.ListFilter) ([]subuser.SubUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []subuser.SubUser
	for _, u := range m.users {
		if u.CompanyID.String() == companyID && (filter.Status == "" || u.Status == filter.Status) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memorySubUserRepository) CountByCustomRole(ctx context.Context, companyID, roleID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.CompanyID.String() == companyID && u.CustomRoleID != nil && u.CustomRoleID.String() == roleID {
			n++
		}
	}
	return n, nil
}

func (m *memorySubUserRepository) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, u := range m.users {
		if u.Status == subuser.StatusPending && u.InvitationExpiry != nil && u.InvitationExpiry.Before(now) {
			u.InvitationToken = nil
			u.InvitationExpiry = nil
			m.users[id] = u
			n++
		}
	}
	return n, nil
}

type fakeRoles struct {
	customRoles map[string]bool
	systemRoles map[string]bool
}

func (f fakeRoles) CustomRoleActive(ctx context.Context, companyID, roleID string) (bool, error) {
	return f.customRoles[roleID], nil
}

func (f fakeRoles) SystemRoleExists(ctx context.Context, name string) (bool, error) {
	return f.systemRoles[name], nil
}

type memoryHistory struct{ rows []audit.RoleAssignment }

func (m *memoryHistory) WithTx(tx *sql.Tx) audit.HistoryRepository { return m }

func (m *memoryHistory) Create(ctx context.Context, h *audit.RoleAssignment) error {
	m.rows = append(m.rows, *h)
	return nil
}

func (m *memoryHistory) ListByUser(ctx context.Context, companyID, userID string) ([]audit.RoleAssignment, error) {
	return m.rows, nil
}

type recordingAudit struct{ entries []audit.Entry }

func (r *recordingAudit) Log(ctx context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

type recordingNotifier struct{ sent []notification.Message }

func (r *recordingNotifier) Notify(ctx context.Context, msg notification.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type subUserDeps struct {
	sqlMock  sqlmock.Sqlmock
	db       *sql.DB
	repo     *memorySubUserRepository
	history  *memoryHistory
	audit    *recordingAudit
	notifier *recordingNotifier
	roleID   string
	svc      subuser.Service
}

// userGrants grants every sub-user action at one level.
type userGrants struct{ level permission.Level }

func (g userGrants) Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error) {
	return permission.HasPermission(permission.Grants{
		{Module: permission.ModuleUsers, Actions: []permission.Action{
			permission.ActionRead, permission.ActionUpdate, permission.ActionDelete, permission.ActionApprove,
		}, Level: g.level},
	}, check.Module, check.Action, check.Level), nil
}

// readAllUpdateOwn sees every sub-user but only changes the ones it invited.
type readAllUpdateOwn struct{}

func (readAllUpdateOwn) Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error) {
	return permission.HasPermission(permission.Grants{
		{Module: permission.ModuleUsers, Actions: []permission.Action{permission.ActionRead}, Level: permission.LevelCompany},
		{Module: permission.ModuleUsers, Actions: []permission.Action{permission.ActionUpdate, permission.ActionDelete}, Level: permission.LevelOwn},
	}, check.Module, check.Action, check.Level), nil
}

func callerOf(companyID, userID string) domain.Caller {
	return domain.Caller{UserID: userID, CompanyID: companyID, SystemRole: "industry_admin"}
}

func newSubUserDeps(t *testing.T) subUserDeps {
	return newSubUserDepsWith(t, userGrants{level: permission.LevelCompany})
}

func newSubUserDepsWith(t *testing.T, enforcer access.Enforcer) subUserDeps {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	roleID := uuid.New().String()
	deps := subUserDeps{
		sqlMock:  mock,
		db:       db,
		repo:     newMemorySubUserRepository(),
		history:  &memoryHistory{},
		audit:    &recordingAudit{},
		notifier: &recordingNotifier{},
		roleID:   roleID,
	}
	roles := fakeRoles{
		customRoles: map[string]bool{roleID: true},
		systemRoles: map[string]bool{"viewer": true, "industry_admin": true},
	}
	guard := access.NewGuard(enforcer, subuser.NewReporting(deps.repo))
	deps.svc = subuser.NewService(db, deps.repo, roles, deps.history, guard, deps.audit, deps.notifier, 0)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func strPtr(s string) *string { return &s }

func TestSubUserService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("custom role with invitation and history", func(t *testing.T) {
		deps := newSubUserDeps(t)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{
			Email:        "Buyer@Acme.test",
			FullName:     "Bea Buyer",
			CustomRoleID: &deps.roleID,
		})

		require.NoError(t, err)
		assert.Equal(t, "buyer@acme.test", resp.Email)
		assert.Equal(t, subuser.StatusPending, resp.Status)
		assert.NotEmpty(t, resp.InvitationToken)
		require.NotNil(t, resp.InvitationExpiry)

		expiry, err := time.Parse(time.RFC3339, *resp.InvitationExpiry)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(subuser.DefaultInvitationTTL), expiry, time.Minute)

		require.Len(t, deps.history.rows, 1)
		assert.Empty(t, deps.history.rows[0].PreviousRole)
		assert.Equal(t, audit.CustomRoleRef(deps.roleID), deps.history.rows[0].NewRole)

		require.Len(t, deps.audit.entries, 1)
		assert.Equal(t, "subuser.created", deps.audit.entries[0].Action)
		assert.Equal(t, audit.TargetTypeSubUser, deps.audit.entries[0].TargetUserType)
		require.Len(t, deps.notifier.sent, 1)
		assert.Equal(t, actorID, deps.notifier.sent[0].UserID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("both roles rejected", func(t *testing.T) {
		deps := newSubUserDeps(t)
		_, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{
			Email:        "x@acme.test",
			FullName:     "X",
			CustomRoleID: &deps.roleID,
			SystemRole:   strPtr("viewer"),
		})
		assert.ErrorIs(t, err, subusererrors.ErrRoleRequired)
	})

	t.Run("neither role rejected", func(t *testing.T) {
		deps := newSubUserDeps(t)
		_, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: "x@acme.test", FullName: "X"})
		assert.ErrorIs(t, err, subusererrors.ErrRoleRequired)
	})

	t.Run("inactive custom role", func(t *testing.T) {
		deps := newSubUserDeps(t)
		_, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{
			Email:        "x@acme.test",
			FullName:     "X",
			CustomRoleID: strPtr(uuid.New().String()),
		})
		assert.ErrorIs(t, err, subusererrors.ErrCustomRoleNotFound)
	})

	t.Run("unknown system role", func(t *testing.T) {
		deps := newSubUserDeps(t)
		_, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{
			Email:      "x@acme.test",
			FullName:   "X",
			SystemRole: strPtr("overlord"),
		})
		assert.ErrorIs(t, err, subusererrors.ErrSystemRoleNotFound)
	})

	t.Run("email is globally unique", func(t *testing.T) {
		deps := newSubUserDeps(t)
		expectTx(t, deps.sqlMock, true)
		_, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: "dup@acme.test", FullName: "A", SystemRole: strPtr("viewer")})
		require.NoError(t, err)

		_, err = deps.svc.Create(ctx, uuid.New().String(), actorID, subuser.CreateSubUserRequest{Email: "DUP@acme.test", FullName: "B", SystemRole: strPtr("viewer")})
		assert.ErrorIs(t, err, subusererrors.ErrEmailTaken)
	})
}

func TestSubUserService_AcceptInvitation(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := newSubUserDeps(t)
	expectTx(t, deps.sqlMock, true)
	created, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: "new@acme.test", FullName: "New", SystemRole: strPtr("viewer")})
	require.NoError(t, err)

	_, err = deps.svc.AcceptInvitation(ctx, subuser.AcceptInvitationRequest{Token: "wrong", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, subusererrors.ErrInvalidInvitation)

	resp, err := deps.svc.AcceptInvitation(ctx, subuser.AcceptInvitationRequest{Token: created.InvitationToken, Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, subuser.StatusActive, resp.Status)
	assert.Nil(t, resp.InvitationExpiry)

	stored := deps.repo.users[created.ID]
	assert.Nil(t, stored.InvitationToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))

	// tokens are single use
	_, err = deps.svc.AcceptInvitation(ctx, subuser.AcceptInvitationRequest{Token: created.InvitationToken, Password: "s3cret-pass"})
	assert.ErrorIs(t, err, subusererrors.ErrInvalidInvitation)
}

func TestSubUserService_ExpiredInvitation(t *testing.T) {
	ctx := context.Background()
	deps := newSubUserDeps(t)
	expectTx(t, deps.sqlMock, true)
	created, err := deps.svc.Create(ctx, uuid.New().String(), uuid.New().String(), subuser.CreateSubUserRequest{Email: "late@acme.test", FullName: "Late", SystemRole: strPtr("viewer")})
	require.NoError(t, err)

	u := deps.repo.users[created.ID]
	past := time.Now().Add(-time.Hour)
	u.InvitationExpiry = &past
	deps.repo.users[created.ID] = u

	_, err = deps.svc.AcceptInvitation(ctx, subuser.AcceptInvitationRequest{Token: created.InvitationToken, Password: "s3cret-pass"})
	assert.ErrorIs(t, err, subusererrors.ErrInvalidInvitation)

	n, err := deps.svc.ExpireInvitations(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Nil(t, deps.repo.users[created.ID].InvitationToken)
}

func TestSubUserService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := newSubUserDeps(t)
	expectTx(t, deps.sqlMock, true)
	created, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: "s@acme.test", FullName: "S", SystemRole: strPtr("viewer")})
	require.NoError(t, err)

	_, err = deps.svc.UpdateStatus(ctx, callerOf(companyID, actorID), created.ID, subuser.StatusSuspended)
	assert.ErrorIs(t, err, subusererrors.ErrInvalidStatusTransition)

	activated, err := deps.svc.Activate(ctx, callerOf(companyID, actorID), created.ID)
	require.NoError(t, err)
	assert.Equal(t, subuser.StatusActive, activated.Status)

	_, err = deps.svc.Activate(ctx, callerOf(companyID, actorID), created.ID)
	assert.ErrorIs(t, err, subusererrors.ErrInvalidStatusTransition)

	suspended, err := deps.svc.UpdateStatus(ctx, callerOf(companyID, actorID), created.ID, subuser.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, subuser.StatusSuspended, suspended.Status)

	last := deps.audit.entries[len(deps.audit.entries)-1]
	assert.Equal(t, "subuser.status_changed", last.Action)
	assert.Equal(t, audit.SeverityHigh, last.Severity)
	assert.Equal(t, "active", last.Details.Before["status"])
	assert.Equal(t, "suspended", last.Details.After["status"])

	_, err = deps.svc.UpdateStatus(ctx, callerOf(uuid.New().String(), actorID), created.ID, subuser.StatusActive)
	assert.ErrorIs(t, err, subusererrors.ErrSubUserNotFound)
}

func TestSubUserService_BulkUpdateStatus(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := newSubUserDeps(t)
	var ids []string
	for _, email := range []string{"a@acme.test", "b@acme.test"} {
		expectTx(t, deps.sqlMock, true)
		created, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: email, FullName: email, SystemRole: strPtr("viewer")})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	missing := uuid.New().String()

	before := len(deps.audit.entries)
	result, err := deps.svc.BulkUpdateStatus(ctx, callerOf(companyID, actorID), append(ids, missing), subuser.StatusActive)

	require.NoError(t, err)
	assert.ElementsMatch(t, ids, result.Updated)
	assert.Contains(t, result.Failed, missing)
	// one audit row per affected sub-user
	assert.Len(t, deps.audit.entries, before+2)
}

func TestSubUserService_UpdateRole(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := newSubUserDeps(t)
	expectTx(t, deps.sqlMock, true)
	created, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: "r@acme.test", FullName: "R", SystemRole: strPtr("viewer")})
	require.NoError(t, err)

	expectTx(t, deps.sqlMock, true)
	updated, err := deps.svc.Update(ctx, callerOf(companyID, actorID), created.ID, subuser.SubUserPatch{CustomRoleID: &deps.roleID})
	require.NoError(t, err)
	assert.Nil(t, updated.SystemRole)
	require.NotNil(t, updated.CustomRoleID)
	assert.Equal(t, deps.roleID, *updated.CustomRoleID)

	require.Len(t, deps.history.rows, 2)
	assert.Equal(t, "system:viewer", deps.history.rows[1].PreviousRole)
	assert.Equal(t, "custom:"+deps.roleID, deps.history.rows[1].NewRole)

	last := deps.audit.entries[len(deps.audit.entries)-1]
	assert.Equal(t, "subuser.role_changed", last.Action)
	assert.Equal(t, audit.CategoryPermissionChange, last.Category)

	n, err := deps.repo.CountByCustomRole(ctx, companyID, deps.roleID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = deps.svc.Update(ctx, callerOf(companyID, actorID), created.ID, subuser.SubUserPatch{})
	assert.ErrorIs(t, err, subusererrors.ErrEmptyPatch)
}

func TestSubUserService_ApplyChanges(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := newSubUserDeps(t)
	expectTx(t, deps.sqlMock, true)
	created, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: "m@acme.test", FullName: "M", SystemRole: strPtr("viewer")})
	require.NoError(t, err)

	deps.sqlMock.ExpectBegin()
	tx, err := deps.db.Begin()
	require.NoError(t, err)

	applied, err := deps.svc.ApplyChanges(ctx, tx, companyID, actorID, created.ID, domain.ChangeSet{
		SystemRole: strPtr("industry_admin"),
		Status:     strPtr(subuser.StatusActive),
	}, "approved request")
	require.NoError(t, err)

	before := applied.Before.(subuser.SubUserResponse)
	after := applied.After.(subuser.SubUserResponse)
	assert.Equal(t, "viewer", *before.SystemRole)
	assert.Equal(t, "industry_admin", *after.SystemRole)
	assert.Equal(t, subuser.StatusActive, after.Status)
	assert.Equal(t, "approved request", deps.history.rows[len(deps.history.rows)-1].Reason)

	_, err = deps.svc.ApplyChanges(ctx, tx, companyID, actorID, created.ID, domain.ChangeSet{Status: strPtr(subuser.StatusPending)}, "")
	assert.ErrorIs(t, err, subusererrors.ErrInvalidStatusTransition)

	_, err = deps.svc.ApplyChanges(ctx, tx, companyID, actorID, created.ID, domain.ChangeSet{SystemRole: strPtr("ghost")}, "")
	assert.ErrorIs(t, err, subusererrors.ErrSystemRoleNotFound)
}

func TestSubUserService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := newSubUserDeps(t)
	expectTx(t, deps.sqlMock, true)
	created, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: "d@acme.test", FullName: "D", SystemRole: strPtr("viewer")})
	require.NoError(t, err)

	require.NoError(t, deps.svc.Delete(ctx, callerOf(companyID, actorID), created.ID))
	_, err = deps.svc.GetByID(ctx, companyID, created.ID)
	assert.ErrorIs(t, err, subusererrors.ErrSubUserNotFound)

	last := deps.audit.entries[len(deps.audit.entries)-1]
	assert.Equal(t, "subuser.deleted", last.Action)
	assert.NotNil(t, last.Details.Before)
	assert.Nil(t, last.Details.After)
}

func TestSubUserService_MutationsRespectOwnership(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	inviterID := uuid.New().String()
	outsiderID := uuid.New().String()

	t.Run("own level hides sub-users invited by someone else", func(t *testing.T) {
		deps := newSubUserDepsWith(t, userGrants{level: permission.LevelOwn})
		expectTx(t, deps.sqlMock, true)
		created, err := deps.svc.Create(ctx, companyID, inviterID, subuser.CreateSubUserRequest{Email: "o@acme.test", FullName: "O", SystemRole: strPtr("viewer")})
		require.NoError(t, err)
		stored := deps.repo.users[created.ID]
		audited := len(deps.audit.entries)
		outsider := callerOf(companyID, outsiderID)

		_, err = deps.svc.Activate(ctx, outsider, created.ID)
		assert.ErrorIs(t, err, subusererrors.ErrSubUserNotFound)

		_, err = deps.svc.UpdateStatus(ctx, outsider, created.ID, subuser.StatusActive)
		assert.ErrorIs(t, err, subusererrors.ErrSubUserNotFound)

		expectTx(t, deps.sqlMock, false)
		_, err = deps.svc.Update(ctx, outsider, created.ID, subuser.SubUserPatch{FullName: strPtr("Hijacked")})
		assert.ErrorIs(t, err, subusererrors.ErrSubUserNotFound)

		assert.ErrorIs(t, deps.svc.Delete(ctx, outsider, created.ID), subusererrors.ErrSubUserNotFound)

		result, err := deps.svc.BulkUpdateStatus(ctx, outsider, []string{created.ID}, subuser.StatusActive)
		require.NoError(t, err)
		assert.Empty(t, result.Updated)
		assert.Contains(t, result.Failed, created.ID)

		assert.Equal(t, stored, deps.repo.users[created.ID])
		assert.Len(t, deps.audit.entries, audited)

		activated, err := deps.svc.Activate(ctx, callerOf(companyID, inviterID), created.ID)
		require.NoError(t, err)
		assert.Equal(t, subuser.StatusActive, activated.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("visible but not owned is forbidden", func(t *testing.T) {
		deps := newSubUserDepsWith(t, readAllUpdateOwn{})
		expectTx(t, deps.sqlMock, true)
		created, err := deps.svc.Create(ctx, companyID, inviterID, subuser.CreateSubUserRequest{Email: "f@acme.test", FullName: "F", SystemRole: strPtr("viewer")})
		require.NoError(t, err)

		_, err = deps.svc.UpdateStatus(ctx, callerOf(companyID, outsiderID), created.ID, subuser.StatusActive)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		err = deps.svc.Delete(ctx, callerOf(companyID, outsiderID), created.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		_, ok := deps.repo.users[created.ID]
		assert.True(t, ok)
		assert.Equal(t, subuser.StatusPending, deps.repo.users[created.ID].Status)
	})
}

func TestSubUserService_ReportingChain(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := newSubUserDeps(t)
	create := func(email string) string {
		expectTx(t, deps.sqlMock, true)
		created, err := deps.svc.Create(ctx, companyID, actorID, subuser.CreateSubUserRequest{Email: email, FullName: email, SystemRole: strPtr("viewer")})
		require.NoError(t, err)
		return created.ID
	}
	a, b, c := create("a@acme.test"), create("b@acme.test"), create("c@acme.test")

	// b reports to a, c reports to b
	expectTx(t, deps.sqlMock, true)
	_, err := deps.svc.Update(ctx, callerOf(companyID, actorID), b, subuser.SubUserPatch{ReportingTo: &a})
	require.NoError(t, err)
	expectTx(t, deps.sqlMock, true)
	_, err = deps.svc.Update(ctx, callerOf(companyID, actorID), c, subuser.SubUserPatch{ReportingTo: &b})
	require.NoError(t, err)

	tests := []struct {
		name    string
		self    string
		manager string
		wantErr error
	}{
		{name: "direct cycle", self: a, manager: b, wantErr: subusererrors.ErrReportingCycle},
		{name: "cycle through the chain", self: a, manager: c, wantErr: subusererrors.ErrReportingCycle},
		{name: "self", self: a, manager: a, wantErr: subusererrors.ErrInvalidReportingTo},
		{name: "unknown manager", self: a, manager: uuid.New().String(), wantErr: subusererrors.ErrInvalidReportingTo},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stored := deps.repo.users[tc.self]
			expectTx(t, deps.sqlMock, false)

			_, err := deps.svc.Update(ctx, callerOf(companyID, actorID), tc.self, subuser.SubUserPatch{ReportingTo: &tc.manager})

			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, stored, deps.repo.users[tc.self])
		})
	}

	// moving c under a keeps the chain acyclic
	expectTx(t, deps.sqlMock, true)
	moved, err := deps.svc.Update(ctx, callerOf(companyID, actorID), c, subuser.SubUserPatch{ReportingTo: &a})
	require.NoError(t, err)
	require.NotNil(t, moved.ReportingTo)
	assert.Equal(t, a, *moved.ReportingTo)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}
