package notification

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, companyID, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, companyID, userID, id string) (bool, error)
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

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return dbtx.Conn(ctx, r.db, r.tx).Create(n).Error
}

func (r *repository) ListByUser(ctx context.Context, companyID, userID string, unreadOnly bool) ([]Notification, error) {
	q := dbtx.Conn(ctx, r.db, r.tx).
		Where("company_id = ?", companyID).
		Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var out []Notification
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

// MarkRead reports false when no notification of the user matched id.
func (r *repository) MarkRead(ctx context.Context, companyID, userID, id string) (bool, error) {
	res := dbtx.Conn(ctx, r.db, r.tx).
		Model(&Notification{}).
		Where("id = ? AND company_id = ? AND user_id = ?", id, companyID, userID).
		Update("read", true)
	return res.RowsAffected > 0, res.Error
}
