package purchaseordererrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrPurchaseOrderNotFound = apperror.New(
		apperror.CodeNotFound,
		"Purchase order not found",
		http.StatusNotFound,
	)

	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"Purchase order cannot move to the requested status",
		http.StatusBadRequest,
	)

	ErrInvalidSteps = apperror.New(
		apperror.CodeInvalidInput,
		"Approval steps must be non-empty and unique",
		http.StatusBadRequest,
	)

	ErrRequirementNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"Purchase orders can only be raised against an approved or published requirement",
		http.StatusBadRequest,
	)

	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Rejection reason is required",
		http.StatusBadRequest,
	)

	ErrInvalidID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid ID",
		http.StatusBadRequest,
	)
)
