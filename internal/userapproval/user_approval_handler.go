package userapproval

import (
	"net/http"

	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("userapproval.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("userapproval.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", httpErr.Message, err.Error())
		return
	}

	resp, err := h.service.Start(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), req.SubUserID, req.Steps)
	if err != nil {
		httpErr := response.FromError(c, err)
		h.logger.Warn("start user approval failed", zap.String("code", httpErr.Code))
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ApproveStep(c *gin.Context) {
	var req ApproveStepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", httpErr.Message, err.Error())
			return
		}
	}

	resp, err := h.service.ApproveStep(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), c.Param("id"), req.Comments)
	if err != nil {
		httpErr := response.FromError(c, err)
		h.logger.Warn("approve onboarding step failed", zap.String("code", httpErr.Code))
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
