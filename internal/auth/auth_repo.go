package auth

import (
	"context"

	"go-diligince/internal/shared/token"

	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock
type Repository interface {
	FindUserByEmail(ctx context.Context, email string) (*Account, error)
	FindSubUserByEmail(ctx context.Context, email string) (*Account, error)
	FindAccount(ctx context.Context, userType, id string) (*Account, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const (
	userColumns = `u.id, u.company_id, c.type AS company_type, u.email, u.name,
		u.password AS password_hash, u.role, u.is_active AS active`
	subUserColumns = `s.id, s.company_id, c.type AS company_type, s.email, s.full_name AS name,
		s.password_hash, COALESCE(s.system_role, '') AS role, s.custom_role_id, (s.status = 'active') AS active`
)

func (r *repository) userQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users u").
		Select(userColumns).
		Joins("JOIN companies c ON c.id = u.company_id").
		Where("u.deleted_at IS NULL")
}

func (r *repository) subUserQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sub_users s").
		Select(subUserColumns).
		Joins("JOIN companies c ON c.id = s.company_id")
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.userQuery(ctx).Where("LOWER(u.email) = LOWER(?)", email), token.UserTypeUser)
}

func (r *repository) FindSubUserByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.subUserQuery(ctx).Where("LOWER(s.email) = LOWER(?)", email), token.UserTypeSubUser)
}

func (r *repository) FindAccount(ctx context.Context, userType, id string) (*Account, error) {
	if userType == token.UserTypeSubUser {
		return scanAccount(r.subUserQuery(ctx).Where("s.id = ?", id), token.UserTypeSubUser)
	}
	return scanAccount(r.userQuery(ctx).Where("u.id = ?", id), token.UserTypeUser)
}

func scanAccount(q *gorm.DB, userType string) (*Account, error) {
	var acc Account
	res := q.Limit(1).Scan(&acc)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	acc.UserType = userType
	return &acc, nil
}
