package userapproval

import (
	"go-diligince/internal/middleware"
	"go-diligince/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, rbacService middleware.RBACService, rdb *redis.Client) {
	g := r.Group("/user-approvals")
	g.Use(auth)
	{
		g.POST("", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionApprove), handler.Start)
		g.GET("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionRead), handler.GetByID)
		g.POST("/:id/approve", middleware.RBACAuthorize(rbacService, permission.ModuleUsers, permission.ActionApprove), middleware.Idempotency(rdb), handler.ApproveStep)
	}
}
