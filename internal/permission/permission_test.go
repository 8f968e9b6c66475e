package permission_test

import (
	"testing"

	"go-diligince/internal/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allActions = []permission.Action{
	permission.ActionCreate,
	permission.ActionRead,
	permission.ActionUpdate,
	permission.ActionDelete,
	permission.ActionApprove,
	permission.ActionExport,
}

func TestHasPermission_LevelAllCoversNarrowerContexts(t *testing.T) {
	grants := permission.Grants{{
		Module:  permission.ModuleRequirements,
		Actions: []permission.Action{permission.ActionRead},
		Level:   permission.LevelAll,
	}}

	for _, lvl := range []permission.Level{permission.LevelOwn, permission.LevelTeam, permission.LevelCompany, permission.LevelAll} {
		assert.True(t, permission.HasPermission(grants, permission.ModuleRequirements, permission.ActionRead, lvl), lvl)
	}
}

func TestHasPermission_LevelNoneBlocksEveryAction(t *testing.T) {
	grants := permission.Grants{{
		Module:  permission.ModuleRoles,
		Actions: allActions,
		Level:   permission.LevelNone,
	}}

	for _, a := range allActions {
		for _, lvl := range []permission.Level{permission.LevelOwn, permission.LevelTeam, permission.LevelCompany, permission.LevelAll} {
			assert.False(t, permission.HasPermission(grants, permission.ModuleRoles, a, lvl))
		}
	}
}

func TestHasPermission(t *testing.T) {
	grants := permission.Grants{{
		Module:  permission.ModuleRequirements,
		Actions: []permission.Action{permission.ActionRead, permission.ActionCreate},
		Level:   permission.LevelCompany,
	}}

	tests := []struct {
		name   string
		module permission.Module
		action permission.Action
		level  permission.Level
		want   bool
	}{
		{"granted action within level", permission.ModuleRequirements, permission.ActionCreate, permission.LevelOwn, true},
		{"granted action at level", permission.ModuleRequirements, permission.ActionRead, permission.LevelCompany, true},
		{"context wider than grant", permission.ModuleRequirements, permission.ActionRead, permission.LevelAll, false},
		{"action not granted", permission.ModuleRequirements, permission.ActionDelete, permission.LevelOwn, false},
		{"module not granted", permission.ModuleQuotes, permission.ActionRead, permission.LevelOwn, false},
		{"required none denies", permission.ModuleRequirements, permission.ActionRead, permission.LevelNone, false},
		{"unknown level denies", permission.ModuleRequirements, permission.ActionRead, permission.Level("galaxy"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permission.HasPermission(grants, tt.module, tt.action, tt.level))
		})
	}
}

func TestHasPermission_EmptyGrantsDeny(t *testing.T) {
	assert.False(t, permission.HasPermission(nil, permission.ModuleUsers, permission.ActionRead, permission.LevelOwn))
}

func TestLevelFor(t *testing.T) {
	base := permission.Ownership{ActorID: "u1", ActorCompanyID: "c1"}

	own := base
	own.OwnerID = "u1"
	assert.Equal(t, permission.LevelOwn, permission.LevelFor(own))

	team := base
	team.OwnerID = "u2"
	team.OwnerReportsTo = "u1"
	assert.Equal(t, permission.LevelTeam, permission.LevelFor(team))

	company := base
	company.OwnerID = "u2"
	company.ResourceCompanyID = "c1"
	assert.Equal(t, permission.LevelCompany, permission.LevelFor(company))

	foreign := base
	foreign.OwnerID = "u9"
	foreign.ResourceCompanyID = "c2"
	assert.Equal(t, permission.LevelAll, permission.LevelFor(foreign))
}

func TestGrantsValidate(t *testing.T) {
	ok := permission.Grants{{Module: permission.ModuleRoles, Actions: []permission.Action{permission.ActionRead}, Level: permission.LevelOwn}}
	assert.NoError(t, ok.Validate())

	bad := permission.Grants{{Module: "spaceships", Level: permission.LevelOwn}}
	assert.ErrorIs(t, bad.Validate(), permission.ErrUnknownModule)

	dup := permission.Grants{
		{Module: permission.ModuleRoles, Level: permission.LevelOwn},
		{Module: permission.ModuleRoles, Level: permission.LevelAll},
	}
	assert.ErrorIs(t, dup.Validate(), permission.ErrDuplicateModule)

	badAction := permission.Grants{{Module: permission.ModuleRoles, Actions: []permission.Action{"launch"}, Level: permission.LevelOwn}}
	assert.ErrorIs(t, badAction.Validate(), permission.ErrUnknownAction)

	badLevel := permission.Grants{{Module: permission.ModuleRoles, Level: "planet"}}
	assert.ErrorIs(t, badLevel.Validate(), permission.ErrUnknownLevel)
}

func TestParseSystemPermission(t *testing.T) {
	m, a, lvl, err := permission.ParseSystemPermission("requirements:approve")
	require.NoError(t, err)
	assert.Equal(t, permission.ModuleRequirements, m)
	assert.Equal(t, permission.ActionApprove, a)
	assert.Equal(t, permission.LevelCompany, lvl)

	_, _, lvl, err = permission.ParseSystemPermission("audit:read:all")
	require.NoError(t, err)
	assert.Equal(t, permission.LevelAll, lvl)

	_, _, _, err = permission.ParseSystemPermission("requirements")
	assert.Error(t, err)

	_, _, _, err = permission.ParseSystemPermission("requirements:*")
	assert.ErrorIs(t, err, permission.ErrUnknownAction)
}

func TestGrantsFromStrings(t *testing.T) {
	grants, err := permission.GrantsFromStrings([]string{
		"requirements:read:own",
		"requirements:create",
		"roles:read:none",
		"roles:update",
	})
	require.NoError(t, err)
	require.Len(t, grants, 2)

	req, ok := grants.Find(permission.ModuleRequirements)
	require.True(t, ok)
	assert.Equal(t, permission.LevelCompany, req.Level)
	assert.ElementsMatch(t, []permission.Action{permission.ActionRead, permission.ActionCreate}, req.Actions)

	roles, _ := grants.Find(permission.ModuleRoles)
	assert.Equal(t, permission.LevelNone, roles.Level)
	assert.False(t, permission.HasPermission(grants, permission.ModuleRoles, permission.ActionUpdate, permission.LevelOwn))
}
