package requirement

import (
	"errors"

	"go-diligince/internal/approval"
	requirementerrors "go-diligince/internal/requirement/errors"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/dbtx"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return requirementerrors.ErrRequirementNotFound
	}
	if errors.Is(err, dbtx.ErrStaleVersion) {
		return apperror.ErrVersionConflict
	}
	return err
}

func mapStepError(err error) error {
	switch {
	case errors.Is(err, approval.ErrStepNotFound):
		return requirementerrors.ErrStepNotFound
	case errors.Is(err, approval.ErrStepNotPending):
		return requirementerrors.ErrStepNotPending
	case errors.Is(err, approval.ErrNoSteps), errors.Is(err, approval.ErrEmptyStepName), errors.Is(err, approval.ErrDuplicateStep):
		return requirementerrors.ErrInvalidSteps
	default:
		return err
	}
}
