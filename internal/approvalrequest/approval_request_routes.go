package approvalrequest

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
	requests := r.Group("/approval-requests")
	requests.Use(auth)
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, permission.ModuleApprovals, permission.ActionRead), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleApprovals, permission.ActionRead), handler.GetByID)
		requests.POST("", middleware.RBACAuthorize(rbacService, permission.ModuleApprovals, permission.ActionCreate), handler.Create)
		requests.POST("/:id/process", middleware.RBACAuthorize(rbacService, permission.ModuleApprovals, permission.ActionApprove), middleware.Idempotency(rdb), handler.Process)
		requests.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, permission.ModuleApprovals, permission.ActionUpdate), handler.Cancel)
	}
}
