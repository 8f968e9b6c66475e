package requirementerrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrRequirementNotFound = apperror.New(
		apperror.CodeNotFound,
		"Requirement not found",
		http.StatusNotFound,
	)

	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"Requirement cannot move to the requested status",
		http.StatusBadRequest,
	)

	ErrNotPendingApproval = apperror.New(
		apperror.CodeInvalidState,
		"Requirement is not awaiting approval",
		http.StatusBadRequest,
	)

	ErrInvalidSteps = apperror.New(
		apperror.CodeInvalidInput,
		"Approval steps must be non-empty and unique",
		http.StatusBadRequest,
	)

	ErrStepNotFound = apperror.New(
		apperror.CodeNotFound,
		"Approval step not found",
		http.StatusNotFound,
	)

	ErrStepNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Approval step is not pending",
		http.StatusBadRequest,
	)

	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Rejection reason is required",
		http.StatusBadRequest,
	)

	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)

	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid actor ID",
		http.StatusBadRequest,
	)
)
