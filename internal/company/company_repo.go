package company

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/company_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, company *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Update(ctx context.Context, company *Company) error
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

func (r *repository) Create(ctx context.Context, company *Company) error {
	return dbtx.Conn(ctx, r.db, r.tx).Create(company).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	if err := dbtx.Conn(ctx, r.db, r.tx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repository) Update(ctx context.Context, company *Company) error {
	return dbtx.Conn(ctx, r.db, r.tx).
		Model(&Company{}).
		Where("id = ?", company.ID).
		Updates(map[string]any{
			"name":       company.Name,
			"email":      company.Email,
			"is_active":  company.IsActive,
			"updated_at": company.UpdatedAt,
		}).Error
}
