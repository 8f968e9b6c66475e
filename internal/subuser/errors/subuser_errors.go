package subusererrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrSubUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"sub-user not found",
		http.StatusNotFound,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"email is already registered",
		http.StatusConflict,
	)
	ErrRoleRequired = apperror.New(
		apperror.CodeInvalidInput,
		"exactly one of custom_role_id or system_role must be set",
		http.StatusBadRequest,
	)
	ErrCustomRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"custom role not found or inactive",
		http.StatusNotFound,
	)
	ErrSystemRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"system role not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"status transition is not allowed",
		http.StatusBadRequest,
	)
	ErrInvalidInvitation = apperror.New(
		apperror.CodeInvalidInput,
		"invitation token is invalid or expired",
		http.StatusBadRequest,
	)
	ErrInvalidReportingTo = apperror.New(
		apperror.CodeInvalidInput,
		"reporting_to must be another sub-user of the same company",
		http.StatusBadRequest,
	)
	ErrReportingCycle = apperror.New(
		apperror.CodeInvalidInput,
		"reporting_to would create a reporting cycle",
		http.StatusBadRequest,
	)
	ErrEmptyPatch = apperror.New(
		apperror.CodeInvalidInput,
		"no fields to update",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
)
