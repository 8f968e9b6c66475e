package purchaseorder

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
	pos := r.Group("/purchase-orders")
	pos.Use(auth)
	{
		pos.GET("", middleware.RBACAuthorize(rbacService, permission.ModulePurchaseOrders, permission.ActionRead), handler.GetAll)
		pos.GET("/:id", middleware.RBACAuthorize(rbacService, permission.ModulePurchaseOrders, permission.ActionRead), handler.GetByID)
		pos.POST("", middleware.RBACAuthorize(rbacService, permission.ModulePurchaseOrders, permission.ActionCreate), middleware.Idempotency(rdb), handler.Create)
		pos.POST("/:id/approve", middleware.RBACAuthorize(rbacService, permission.ModulePurchaseOrders, permission.ActionApprove), middleware.Idempotency(rdb), handler.ApproveStep)
		pos.POST("/:id/reject", middleware.RBACAuthorize(rbacService, permission.ModulePurchaseOrders, permission.ActionApprove), middleware.Idempotency(rdb), handler.Reject)
		pos.POST("/:id/issue", middleware.RBACAuthorize(rbacService, permission.ModulePurchaseOrders, permission.ActionUpdate), handler.Issue)
		pos.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, permission.ModulePurchaseOrders, permission.ActionUpdate), handler.Cancel)
	}
}
