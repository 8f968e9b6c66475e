package rbac

import (
	"net/http"
	"strings"

	"go-diligince/internal/domain"
	"go-diligince/internal/permission"
	"go-diligince/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// Check answers whether the caller may perform action on module for a
// resource with the given ownership.
func (h *Handler) Check(c *gin.Context) {
	var req domain.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http rbac check validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "module and action are required", err.Error())
		return
	}

	module := permission.Module(strings.TrimSpace(req.Module))
	action := permission.Action(strings.TrimSpace(req.Action))
	if !module.Valid() || !action.Valid() {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown module or action", nil)
		return
	}

	companyID := c.GetString("company_id")
	userID := c.GetString("user_id")

	resourceCompanyID := req.ResourceCompanyID
	if resourceCompanyID == "" {
		resourceCompanyID = companyID
	}
	level := permission.LevelFor(permission.Ownership{
		ActorID:           userID,
		ActorCompanyID:    companyID,
		OwnerID:           req.OwnerID,
		OwnerReportsTo:    req.OwnerReportsTo,
		ResourceCompanyID: resourceCompanyID,
	})

	allowed, err := h.service.Enforce(c.Request.Context(), domain.PermissionCheck{
		SubjectID:    userID,
		CompanyID:    companyID,
		SystemRole:   c.GetString("role"),
		CustomRoleID: c.GetString("custom_role_id"),
		Module:       module,
		Action:       action,
		Level:        level,
	})
	if err != nil {
		h.logger.Error("http rbac check failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, domain.CheckResponse{
		Allowed: allowed,
		Level:   string(level),
	}, nil)
}

// Grants returns the caller's resolved grants.
func (h *Handler) Grants(c *gin.Context) {
	grants, err := h.service.ResolveGrants(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("role"),
		c.GetString("custom_role_id"),
	)
	if err != nil {
		h.logger.Error("http rbac grants failed", zap.Error(err))
		response.FromError(c, err)
		return
	}
	if grants == nil {
		grants = permission.Grants{}
	}
	response.Success(c, http.StatusOK, grants, nil)
}
