package user

import (
	"context"
	"database/sql"

	"go-diligince/internal/shared/dbtx"
	"go-diligince/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, companyID string, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]User, error)
	Update(ctx context.Context, u *User) error
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

func (r *repository) Create(ctx context.Context, u *User) error {
	if u.Version == 0 {
		u.Version = 1
	}
	return dbtx.Conn(ctx, r.db, r.tx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, companyID string, id string) (*User, error) {
	var u User
	err := dbtx.Conn(ctx, r.db, r.tx).
		Scopes(tenant.Scope(companyID)).
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := dbtx.Conn(ctx, r.db, r.tx).First(&u, "LOWER(email) = LOWER(?)", email).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]User, error) {
	var users []User
	err := dbtx.Conn(ctx, r.db, r.tx).
		Scopes(tenant.Scope(companyID)).
		Order("email ASC").
		Find(&users).Error
	return users, err
}

// Update is a compare-and-swap on Version.
func (r *repository) Update(ctx context.Context, u *User) error {
	prev := u.Version
	u.Version = prev + 1

	res := dbtx.Conn(ctx, r.db, r.tx).
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
