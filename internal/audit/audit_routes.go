package audit

import (
	"go-diligince/internal/middleware"
	"go-diligince/internal/permission"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
) {
	group := r.Group("")
	group.Use(auth)
	{
		group.GET("/audit-logs", middleware.RBACAuthorize(rbacService, permission.ModuleAudit, permission.ActionRead), handler.List)
		group.GET("/role-history/:userId", middleware.RBACAuthorize(rbacService, permission.ModuleAudit, permission.ActionRead), handler.RoleHistory)
	}
}
