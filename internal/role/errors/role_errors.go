package roleerrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
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
	ErrInvalidPermissions = apperror.New(
		apperror.CodeInvalidInput,
		"permissions contain an unknown module, action or level, or repeat a module",
		http.StatusBadRequest,
	)
	ErrEmptyPatch = apperror.New(
		apperror.CodeInvalidInput,
		"no fields to update",
		http.StatusBadRequest,
	)
	ErrDuplicateRoleName = apperror.New(
		apperror.CodeConflict,
		"a role with this name already exists in the company",
		http.StatusConflict,
	)
	ErrRoleInUse = apperror.New(
		apperror.CodeConflict,
		"role is assigned to one or more sub-users and cannot be deleted",
		http.StatusConflict,
	)
	ErrRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"role not found",
		http.StatusNotFound,
	)
	ErrSystemRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"system role not found",
		http.StatusNotFound,
	)
	ErrCompanyNotFound = apperror.New(
		apperror.CodeNotFound,
		"company not found",
		http.StatusNotFound,
	)
)
