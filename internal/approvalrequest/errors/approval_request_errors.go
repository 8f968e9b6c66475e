package approvalrequesterrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Approval request not found",
		http.StatusNotFound,
	)

	ErrRequestNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Approval request has already been processed",
		http.StatusBadRequest,
	)

	ErrInvalidRequestType = apperror.New(
		apperror.CodeInvalidInput,
		"Unsupported request type",
		http.StatusBadRequest,
	)

	ErrInvalidTargetType = apperror.New(
		apperror.CodeInvalidInput,
		"Unsupported target user type",
		http.StatusBadRequest,
	)

	ErrChangeSetMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"Request data does not match the request type",
		http.StatusBadRequest,
	)

	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"Action must be approve or reject",
		http.StatusBadRequest,
	)

	ErrNotDesignatedApprover = apperror.New(
		apperror.CodeForbidden,
		"You are not an approver on this request",
		http.StatusForbidden,
	)

	ErrSelfApproval = apperror.New(
		apperror.CodeForbidden,
		"Requesters cannot approve their own request",
		http.StatusForbidden,
	)

	ErrNotRequester = apperror.New(
		apperror.CodeForbidden,
		"Only the requester can cancel this request",
		http.StatusForbidden,
	)

	ErrInvalidID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid ID",
		http.StatusBadRequest,
	)
)
