package role

import (
	"errors"

	roleerrors "go-diligince/internal/role/errors"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return roleerrors.ErrRoleNotFound
	}
	if errors.Is(err, dbtx.ErrStaleVersion) {
		return apperror.ErrVersionConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_custom_roles_company_name" {
		return roleerrors.ErrDuplicateRoleName
	}

	return err
}
