package subuser

import (
	"go-diligince/internal/middleware"
	"go-diligince/internal/permission"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
) {
	public := r.Group("/sub-users")
	public.POST("/accept-invitation", middleware.RateLimitByIP(rate.Limit(1), 5), handler.AcceptInvitation)

	subUsers := r.Group("/sub-users")
	subUsers.Use(auth)
	{
		subUsers.GET("", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionRead), handler.List)
		subUsers.GET("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionRead), handler.GetByID)
		subUsers.POST("", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionCreate), handler.Create)
		subUsers.PATCH("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionUpdate), handler.Update)
		subUsers.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionUpdate), handler.UpdateStatus)
		subUsers.POST("/:id/activate", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionApprove), handler.Activate)
		subUsers.POST("/bulk-status", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionUpdate), handler.BulkUpdateStatus)
		subUsers.DELETE("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionDelete), handler.Delete)
	}
}
