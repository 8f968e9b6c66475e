package userapprovalerrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrUserApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"User approval not found",
		http.StatusNotFound,
	)

	ErrAlreadyStarted = apperror.New(
		apperror.CodeConflict,
		"An onboarding approval already exists for this sub-user",
		http.StatusConflict,
	)

	ErrSubUserNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending sub-users go through onboarding approval",
		http.StatusBadRequest,
	)

	ErrInvalidSteps = apperror.New(
		apperror.CodeInvalidInput,
		"Approval steps must be non-empty and unique",
		http.StatusBadRequest,
	)
)
