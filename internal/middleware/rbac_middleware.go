package middleware

import (
	"context"

	autherrors "go-diligince/internal/auth/errors"
	"go-diligince/internal/domain"
	"go-diligince/internal/permission"
	"go-diligince/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is satisfied by rbac.Service; declared here so middleware does
// not depend on the rbac package.
type RBACService interface {
	Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error)
}

// RBACAuthorize gates a route on module/action. The route itself has no
// resource yet, so the check asks for the narrowest level. Services refine it
// with access.Guard once the record and its owner are loaded.
func RBACAuthorize(service RBACService, module permission.Module, action permission.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		companyID := c.GetString("company_id")
		if userID == "" || companyID == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(c.Request.Context(), CallerFrom(c).Check(module, action, permission.LevelOwn))
		if err != nil {
			zap.L().Named("middleware.rbac").Error("permission check failed",
				zap.String("user_id", userID),
				zap.String("module", string(module)),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			abortWith(c, apperror.ErrInternal)
			return
		}

		if !allowed {
			abortWith(c, autherrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CallerFrom reads the identity AuthMiddleware stored on the gin context.
func CallerFrom(c *gin.Context) domain.Caller {
	return domain.Caller{
		UserID:       c.GetString("user_id"),
		CompanyID:    c.GetString("company_id"),
		SystemRole:   c.GetString("role"),
		CustomRoleID: c.GetString("custom_role_id"),
	}
}
