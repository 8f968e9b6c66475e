package company

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
	company := r.Group("/companies")
	company.Use(auth)
	{
		company.GET("/me",
			middleware.RateLimitByUser(2, 10),
			handler.GetMe,
		)
		company.PUT("/me",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, permission.ModuleSettings, permission.ActionUpdate),
			handler.UpdateMe,
		)
	}
}
