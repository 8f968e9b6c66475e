package usererrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"User with the same email already exists",
		http.StatusConflict,
	)

	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)

	ErrSystemRoleNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"System role does not exist",
		http.StatusBadRequest,
	)

	ErrCustomRoleNotAllowed = apperror.New(
		apperror.CodeInvalidInput,
		"Custom roles can only be assigned to sub-users",
		http.StatusBadRequest,
	)

	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidState,
		"Status is not applicable to accounts",
		http.StatusBadRequest,
	)

	ErrEmptyChange = apperror.New(
		apperror.CodeInvalidInput,
		"No changes requested",
		http.StatusBadRequest,
	)

	ErrWrongPassword = apperror.New(
		apperror.CodeInvalidInput,
		"Current password is incorrect",
		http.StatusBadRequest,
	)
)
