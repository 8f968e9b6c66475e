package notification

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
	l := zap.L().Named("notification.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) List(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	resp, err := h.service.ListForUser(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), unreadOnly)
	if err != nil {
		httpErr := response.FromError(c, err)
		h.logger.Warn("http list notifications failed", zap.String("code", httpErr.Code), zap.Error(err))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) MarkRead(c *gin.Context) {
	err := h.service.MarkRead(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		httpErr := response.FromError(c, err)
		h.logger.Warn("http mark notification read failed", zap.String("code", httpErr.Code), zap.Error(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id"), "read": true}, nil)
}
