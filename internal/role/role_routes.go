package role

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
	roles := r.Group("/roles")
	roles.Use(auth)
	{
		roles.GET("/system", middleware.RBACAuthorize(rbacService, permission.ModuleRoles, permission.ActionRead), handler.ListSystem)
		roles.GET("", middleware.RBACAuthorize(rbacService, permission.ModuleRoles, permission.ActionRead), handler.List)
		roles.GET("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleRoles, permission.ActionRead), handler.GetByID)
		roles.POST("", middleware.RBACAuthorize(rbacService, permission.ModuleRoles, permission.ActionCreate), handler.Create)
		roles.PATCH("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleRoles, permission.ActionUpdate), handler.Update)
		roles.DELETE("/:id", middleware.RBACAuthorize(rbacService, permission.ModuleRoles, permission.ActionDelete), handler.Delete)
	}
}
