package token_test

import (
	"testing"
	"time"

	"go-diligince/internal/shared/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	raw, err := token.Issue("secret", token.Claims{
		UserID:       "u1",
		CompanyID:    "c1",
		CompanyType:  "industry",
		UserType:     token.UserTypeSubUser,
		CustomRoleID: "r1",
	}, token.TypeAccess, 15*time.Minute, now)
	require.NoError(t, err)

	claims, err := token.Parse("secret", raw, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, "r1", claims.CustomRoleID)
	assert.Equal(t, token.UserTypeSubUser, claims.UserType)

	_, err = token.Parse("secret", raw, token.TypeRefresh)
	assert.ErrorIs(t, err, token.ErrWrongTokenType)

	_, err = token.Parse("other", raw, token.TypeAccess)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	raw, err := token.Issue("secret", token.Claims{UserID: "u1", CompanyID: "c1"}, token.TypeAccess, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = token.Parse("secret", raw, token.TypeAccess)
	assert.True(t, token.IsExpired(err))
}
