package audit

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"

	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID  string
	TargetUser string
	Category   string
	Action     string
}

// Repository is append-only: there is no update or delete.
//
//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}

type HistoryRepository interface {
	WithTx(tx *sql.Tx) HistoryRepository
	Create(ctx context.Context, h *RoleAssignment) error
	ListByUser(ctx context.Context, companyID, userID string) ([]RoleAssignment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", filter.CompanyID)
	if filter.TargetUser != "" {
		q = q.Where("target_user = ?", filter.TargetUser)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}

	var entries []Entry
	err := q.Order("id DESC").Find(&entries).Error
	return entries, err
}

type historyRepository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) WithTx(tx *sql.Tx) HistoryRepository {
	return &historyRepository{db: r.db, tx: tx}
}

func (r *historyRepository) Create(ctx context.Context, h *RoleAssignment) error {
	return dbtx.Conn(ctx, r.db, r.tx).Create(h).Error
}

func (r *historyRepository) ListByUser(ctx context.Context, companyID, userID string) ([]RoleAssignment, error) {
	var rows []RoleAssignment
	err := dbtx.Conn(ctx, r.db, r.tx).
		Where("company_id = ?", companyID).
		Where("user_id = ?", userID).
		Order("effective_date DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
