package subuser

import (
	"errors"

	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"
	subusererrors "go-diligince/internal/subuser/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return subusererrors.ErrSubUserNotFound
	}
	if errors.Is(err, dbtx.ErrStaleVersion) {
		return apperror.ErrVersionConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_sub_users_email" {
		return subusererrors.ErrEmailTaken
	}

	return err
}
