package requirement

import (
	"go-diligince/internal/middleware"
	"go-diligince/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	requirements := r.Group("/requirements")
	requirements.Use(auth)
	{
		requirements.GET("", middleware.RBACAuthorize(rbacService, permission.ModuleRequirements, permission.ActionRead), handler.GetAll)
		requirements.GET("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleRequirements, permission.ActionRead), handler.GetByID)
		requirements.POST("", middleware.RBACAuthorize(rbacService, permission.ModuleRequirements, permission.ActionCreate), handler.Create)
		requirements.POST("/:id/submit", middleware.RBACAuthorize(rbacService, permission.ModuleRequirements, permission.ActionUpdate), handler.Submit)
		requirements.POST("/:id/publish", middleware.RBACAuthorize(rbacService, permission.ModuleRequirements, permission.ActionUpdate), handler.Publish)
		requirements.POST("/:id/close", middleware.RBACAuthorize(rbacService, permission.ModuleRequirements, permission.ActionUpdate), handler.Close)

		approvals := requirements.Group("/:id")
		approvals.Use(middleware.RBACAuthorize(rbacService, permission.ModuleRequirements, permission.ActionApprove), middleware.Idempotency(rdb))
		approvals.POST("/approve", handler.ApproveStep)
		approvals.POST("/skip", handler.SkipStep)
		approvals.POST("/reject", handler.Reject)
	}
}
