package audit

import (
	"net/http"
	"strconv"

	"go-diligince/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("audit.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		CompanyID:  c.GetString("company_id"),
		TargetUser: c.Query("target_user"),
		Category:   c.Query("category"),
		Action:     c.Query("action"),
	}

	resp, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httpErr := response.FromError(c, err)
		h.logger.Warn("http list audit entries failed", zap.String("code", httpErr.Code), zap.Error(err))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) RoleHistory(c *gin.Context) {
	resp, err := h.service.RoleHistory(c.Request.Context(), c.GetString("company_id"), c.Param("userId"))
	if err != nil {
		httpErr := response.FromError(c, err)
		h.logger.Warn("http role history failed", zap.String("code", httpErr.Code), zap.Error(err))
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
