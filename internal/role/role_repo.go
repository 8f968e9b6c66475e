package role

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=role_repo.go -destination=mock/role_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *CustomRole) error
	Update(ctx context.Context, r *CustomRole) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*CustomRole, error)
	FindActiveByIDAndCompany(ctx context.Context, companyID, id string) (*CustomRole, error)
	ExistsActiveName(ctx context.Context, companyID, name string, excludeID string) (bool, error)
	ListByCompany(ctx context.Context, companyID string, includeInactive bool) ([]CustomRole, error)

	UpsertSystemRole(ctx context.Context, r *SystemRole) error
	ListActiveSystemRoles(ctx context.Context) ([]SystemRole, error)
	FindActiveSystemRole(ctx context.Context, name string) (*SystemRole, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, role *CustomRole) error {
	return r.conn(ctx).Create(role).Error
}

// Update writes every column when the stored version still matches and bumps it.
func (r *repository) Update(ctx context.Context, role *CustomRole) error {
	prev := role.Version
	role.Version = prev + 1

	res := r.conn(ctx).
		Model(role).
		Where("version = ?", prev).
		Select("*").
		Omit("created_at").
		Updates(role)
	if res.Error != nil {
		role.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		role.Version = prev
		return dbtx.ErrStaleVersion
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*CustomRole, error) {
	var role CustomRole
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		First(&role, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindActiveByIDAndCompany(ctx context.Context, companyID, id string) (*CustomRole, error) {
	var role CustomRole
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		Where("is_active = ?", true).
		First(&role, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) ExistsActiveName(ctx context.Context, companyID, name string, excludeID string) (bool, error) {
	q := r.conn(ctx).
		Model(&CustomRole{}).
		Where("company_id = ?", companyID).
		Where("LOWER(name) = LOWER(?)", name).
		Where("is_active = ?", true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByCompany(ctx context.Context, companyID string, includeInactive bool) ([]CustomRole, error) {
	q := r.conn(ctx).Where("company_id = ?", companyID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var roles []CustomRole
	err := q.Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *repository) UpsertSystemRole(ctx context.Context, role *SystemRole) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "permissions", "is_active", "updated_at"}),
		}).
		Create(role).Error
}

func (r *repository) ListActiveSystemRoles(ctx context.Context) ([]SystemRole, error) {
	var roles []SystemRole
	err := r.conn(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *repository) FindActiveSystemRole(ctx context.Context, name string) (*SystemRole, error) {
	var role SystemRole
	err := r.conn(ctx).
		Where("is_active = ?", true).
		First(&role, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}
