package auditerrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrIncompleteEntry = apperror.New(
		apperror.CodeInvalidInput,
		"audit entry requires action, performed_by, company_id and category",
		http.StatusBadRequest,
	)
	ErrInvalidCategory = apperror.New(
		apperror.CodeInvalidInput,
		"invalid audit category",
		http.StatusBadRequest,
	)
)
