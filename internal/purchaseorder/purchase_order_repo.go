package purchaseorder

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"
	"go-diligince/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=purchase_order_repo.go -destination=mock/purchase_order_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, po *PurchaseOrder) error
	Update(ctx context.Context, po *PurchaseOrder) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PurchaseOrder, error)
	FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]PurchaseOrder, error)
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

func (r *repository) Create(ctx context.Context, po *PurchaseOrder) error {
	return dbtx.Conn(ctx, r.db, r.tx).Create(po).Error
}

func (r *repository) Update(ctx context.Context, po *PurchaseOrder) error {
	prev := po.Version
	po.Version = prev + 1

	res := dbtx.Conn(ctx, r.db, r.tx).
		Model(po).
		Where("version = ?", prev).
		Select("*").
		Omit("created_at").
		Updates(po)
	if res.Error != nil || res.RowsAffected == 0 {
		po.Version = prev
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return dbtx.ErrStaleVersion
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := dbtx.Conn(ctx, r.db, r.tx).Scopes(tenant.Scope(companyID)).First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]PurchaseOrder, error) {
	var pos []PurchaseOrder
	q := dbtx.Conn(ctx, r.db, r.tx).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.VendorCompanyID != "" {
		q = q.Where("vendor_company_id = ?", filter.VendorCompanyID)
	}
	err := q.Order("created_at DESC").Find(&pos).Error
	return pos, err
}
