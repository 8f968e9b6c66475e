package tenant_test

import (
	"testing"

	"go-diligince/internal/tenant"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID        string
	CompanyID string
}

func newDryRun(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestScope_FiltersByCompany(t *testing.T) {
	db := newDryRun(t)

	stmt := db.Table("rows").Scopes(tenant.Scope("c1")).Find(&[]row{}).Statement
	require.Contains(t, stmt.SQL.String(), "rows.company_id = $1")
	require.Equal(t, []any{"c1"}, stmt.Vars)
}

func TestScope_EmptyCompanyMatchesNothing(t *testing.T) {
	db := newDryRun(t)

	stmt := db.Table("rows").Scopes(tenant.Scope("")).Find(&[]row{}).Statement
	require.Contains(t, stmt.SQL.String(), "1 = 0")
}
