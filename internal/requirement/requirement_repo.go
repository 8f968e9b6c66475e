package requirement

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"
	"go-diligince/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=requirement_repo.go -destination=mock/requirement_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Requirement) error
	Update(ctx context.Context, r *Requirement) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Requirement, error)
	FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]Requirement, error)
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

func (r *repository) Create(ctx context.Context, req *Requirement) error {
	return dbtx.Conn(ctx, r.db, r.tx).Create(req).Error
}

// Update is a compare-and-swap on Version.
func (r *repository) Update(ctx context.Context, req *Requirement) error {
	prev := req.Version
	req.Version = prev + 1

	res := dbtx.Conn(ctx, r.db, r.tx).
		Model(req).
		Where("version = ?", prev).
		Select("*").
		Omit("created_at").
		Updates(req)
	if res.Error != nil {
		req.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		req.Version = prev
		return dbtx.ErrStaleVersion
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Requirement, error) {
	var req Requirement
	err := dbtx.Conn(ctx, r.db, r.tx).
		Scopes(tenant.Scope(companyID)).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]Requirement, error) {
	var reqs []Requirement
	q := dbtx.Conn(ctx, r.db, r.tx).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	err := q.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}
