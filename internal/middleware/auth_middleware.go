package middleware

import (
	"strings"

	autherrors "go-diligince/internal/auth/errors"
	"go-diligince/internal/shared/apperror"
	"go-diligince/internal/shared/contextutil"
	"go-diligince/internal/shared/response"
	"go-diligince/internal/shared/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the access token and publishes the caller identity
// under the gin keys user_id, company_id, company_type, user_type, role and
// custom_role_id.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			raw = ""
		}
		if raw == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			abortWith(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := token.Parse(secret, raw, token.TypeAccess)
		if err != nil {
			if token.IsExpired(err) {
				abortWith(c, autherrors.ErrTokenExpired)
				return
			}
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("company_id", claims.CompanyID)
		c.Set("company_type", claims.CompanyType)
		c.Set("user_type", claims.UserType)
		c.Set("role", claims.Role)
		c.Set("custom_role_id", claims.CustomRoleID)

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextutil.WithCompanyID(ctx, claims.CompanyID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}
