package userapproval

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"
	"go-diligince/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, ua *UserApproval) error
	Update(ctx context.Context, ua *UserApproval) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*UserApproval, error)
	FindBySubUser(ctx context.Context, companyID, subUserID string) (*UserApproval, error)
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

func (r *repository) Create(ctx context.Context, ua *UserApproval) error {
	return dbtx.Conn(ctx, r.db, r.tx).Create(ua).Error
}

func (r *repository) Update(ctx context.Context, ua *UserApproval) error {
	prev := ua.Version
	ua.Version++
	res := dbtx.Conn(ctx, r.db, r.tx).
		Model(ua).
		Where("version = ?", prev).
		Select("steps", "status", "approved_at", "version", "updated_at").
		Updates(ua)
	if res.Error != nil {
		ua.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		ua.Version = prev
		return dbtx.ErrStaleVersion
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*UserApproval, error) {
	var ua UserApproval
	if err := dbtx.Conn(ctx, r.db, r.tx).Scopes(tenant.Scope(companyID)).First(&ua, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ua, nil
}

func (r *repository) FindBySubUser(ctx context.Context, companyID, subUserID string) (*UserApproval, error) {
	var ua UserApproval
	if err := dbtx.Conn(ctx, r.db, r.tx).Scopes(tenant.Scope(companyID)).First(&ua, "sub_user_id = ?", subUserID).Error; err != nil {
		return nil, err
	}
	return &ua, nil
}
