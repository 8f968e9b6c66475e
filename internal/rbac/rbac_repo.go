package rbac

import (
	"context"

	"go-diligince/internal/permission"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	FindCustomRoleGrants(ctx context.Context, companyID, roleID string) (permission.Grants, error)
	FindSystemRolePermissions(ctx context.Context, name string) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type customRoleGrantsRow struct {
	ID          string
	Permissions permission.Grants `gorm:"serializer:json"`
}

type systemRolePermissionsRow struct {
	Name        string
	Permissions []string `gorm:"serializer:json"`
}

// FindCustomRoleGrants only resolves active roles owned by companyID.
func (r *repository) FindCustomRoleGrants(ctx context.Context, companyID, roleID string) (permission.Grants, error) {
	var row customRoleGrantsRow
	err := r.db.WithContext(ctx).
		Table("custom_roles").
		Select("id, permissions").
		Where("id = ?", roleID).
		Where("company_id = ?", companyID).
		Where("is_active = ?", true).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.Permissions, nil
}

func (r *repository) FindSystemRolePermissions(ctx context.Context, name string) ([]string, error) {
	var row systemRolePermissionsRow
	err := r.db.WithContext(ctx).
		Table("system_roles").
		Select("name, permissions").
		Where("name = ?", name).
		Where("is_active = ?", true).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.Permissions, nil
}
