package notification

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
	notifications := r.Group("/notifications")
	notifications.Use(auth)
	{
		notifications.GET("", middleware.RBACAuthorize(rbacService, permission.ModuleNotifications, permission.ActionRead), handler.List)
		notifications.PATCH("/:id/read", middleware.RBACAuthorize(rbacService, permission.ModuleNotifications, permission.ActionUpdate), handler.MarkRead)
	}
}
