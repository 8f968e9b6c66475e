package notificationerrors

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
	ErrInvalidRecipient = apperror.New(
		apperror.CodeInvalidInput,
		"notification requires a valid company and recipient",
		http.StatusBadRequest,
	)
)
