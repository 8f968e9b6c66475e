package user

import (
	"errors"

	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"
	usererrors "go-diligince/internal/user/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}
	if errors.Is(err, dbtx.ErrStaleVersion) {
		return apperror.ErrVersionConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_users_email" {
		return usererrors.ErrUserAlreadyExists
	}
	return err
}
