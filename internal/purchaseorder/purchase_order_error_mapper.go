package purchaseorder

import (
	"errors"

	"go-diligince/internal/approval"
	purchaseordererrors "go-diligince/internal/purchaseorder/errors"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return purchaseordererrors.ErrPurchaseOrderNotFound
	case errors.Is(err, dbtx.ErrStaleVersion):
		return apperror.ErrVersionConflict
	case errors.Is(err, approval.ErrNoSteps), errors.Is(err, approval.ErrEmptyStepName), errors.Is(err, approval.ErrDuplicateStep):
		return purchaseordererrors.ErrInvalidSteps
	default:
		return err
	}
}
