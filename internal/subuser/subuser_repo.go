package subuser

import (
	"context"
	"database/sql"
	"time"

	"go-diligince/internal/shared/dbtx"
	"go-diligince/internal/tenant"

	"gorm.io/gorm"
)

type ListFilter struct {
	Status string
}

//go:generate mockgen -source=subuser_repo.go -destination=mock/subuser_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *SubUser) error
	Update(ctx context.Context, u *SubUser) error
	Delete(ctx context.Context, companyID, id string) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*SubUser, error)
	FindByEmail(ctx context.Context, email string) (*SubUser, error)
	FindByInvitationToken(ctx context.Context, token string) (*SubUser, error)
	ListByCompany(ctx context.Context, companyID string, filter ListFilter) ([]SubUser, error)
	CountByCustomRole(ctx context.Context, companyID, roleID string) (int64, error)
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, u *SubUser) error {
	return r.conn(ctx).Create(u).Error
}

// Update writes every column when the stored version still matches and bumps it.
func (r *repository) Update(ctx context.Context, u *SubUser) error {
	prev := u.Version
	u.Version = prev + 1

	res := r.conn(ctx).
		Model(u).
		Where("version = ?", prev).
		Select("*").
		Omit("created_at").
		Updates(u)
	if res.Error != nil {
		u.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		u.Version = prev
		return dbtx.ErrStaleVersion
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&SubUser{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*SubUser, error) {
	var u SubUser
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*SubUser, error) {
	var u SubUser
	err := r.conn(ctx).First(&u, "LOWER(email) = LOWER(?)", email).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByInvitationToken(ctx context.Context, token string) (*SubUser, error) {
	var u SubUser
	err := r.conn(ctx).First(&u, "invitation_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID string, filter ListFilter) ([]SubUser, error) {
	q := r.conn(ctx).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var users []SubUser
	err := q.Order("created_at DESC").Find(&users).Error
	return users, err
}

// CountByCustomRole counts every sub-user that references the role, whatever
// its status.
func (r *repository) CountByCustomRole(ctx context.Context, companyID, roleID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&SubUser{}).
		Scopes(tenant.Scope(companyID)).
		Where("custom_role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

func (r *repository) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	res := r.conn(ctx).
		Model(&SubUser{}).
		Where("status = ?", StatusPending).
		Where("invitation_token IS NOT NULL").
		Where("invitation_expiry < ?", now).
		Updates(map[string]any{
			"invitation_token":  nil,
			"invitation_expiry": nil,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        now,
		})
	return res.RowsAffected, res.Error
}
