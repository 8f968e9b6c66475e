package access_test

import (
	"context"
	"testing"

	"go-diligince/internal/access"
	"go-diligince/internal/domain"
	"go-diligince/internal/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type levelEnforcer struct {
	granted permission.Level
	checks  []domain.PermissionCheck
}

func (e *levelEnforcer) Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error) {
	e.checks = append(e.checks, check)
	return permission.HasPermission(permission.Grants{
		{Module: permission.ModuleRequirements, Actions: []permission.Action{permission.ActionRead}, Level: e.granted},
	}, check.Module, check.Action, check.Level), nil
}

type managers map[string]string

func (m managers) ManagerOf(ctx context.Context, companyID, userID string) (string, error) {
	return m[userID], nil
}

type doc struct{ owner string }

func TestGuard_CanAccess(t *testing.T) {
	caller := domain.Caller{UserID: "boss", CompanyID: "c1"}
	ctx := context.Background()

	t.Run("team grant reaches direct reports only", func(t *testing.T) {
		e := &levelEnforcer{granted: permission.LevelTeam}
		g := access.NewGuard(e, managers{"alice": "boss"})

		ok, err := g.CanAccess(ctx, caller, permission.ModuleRequirements, permission.ActionRead, access.Resource{OwnerID: "alice", CompanyID: "c1"})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, permission.LevelTeam, e.checks[0].Level)

		ok, err = g.CanAccess(ctx, caller, permission.ModuleRequirements, permission.ActionRead, access.Resource{OwnerID: "bob", CompanyID: "c1"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("own grant reaches own records", func(t *testing.T) {
		g := access.NewGuard(&levelEnforcer{granted: permission.LevelOwn}, nil)

		ok, err := g.CanAccess(ctx, caller, permission.ModuleRequirements, permission.ActionRead, access.Resource{OwnerID: "boss", CompanyID: "c1"})
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestFilter(t *testing.T) {
	caller := domain.Caller{UserID: "boss", CompanyID: "c1"}
	items := []doc{{owner: "boss"}, {owner: "alice"}, {owner: "bob"}, {owner: "alice"}}
	res := func(d doc) access.Resource { return access.Resource{OwnerID: d.owner, CompanyID: "c1"} }

	t.Run("company grant keeps everything with one check", func(t *testing.T) {
		e := &levelEnforcer{granted: permission.LevelCompany}
		out, err := access.Filter(context.Background(), access.NewGuard(e, nil), caller, permission.ModuleRequirements, permission.ActionRead, items, res)
		require.NoError(t, err)
		assert.Len(t, out, 4)
		assert.Len(t, e.checks, 1)
	})

	t.Run("team grant keeps own and reports", func(t *testing.T) {
		e := &levelEnforcer{granted: permission.LevelTeam}
		out, err := access.Filter(context.Background(), access.NewGuard(e, managers{"alice": "boss"}), caller, permission.ModuleRequirements, permission.ActionRead, items, res)
		require.NoError(t, err)
		assert.Equal(t, []doc{{owner: "boss"}, {owner: "alice"}, {owner: "alice"}}, out)
	})
}
