package middleware

import (
	"go-diligince/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger must run after RequestID. It stores a request-scoped logger
// in the request context; user fields are attached once auth has run.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		fields := []zap.Field{zap.String("request_id", contextutil.GetRequestID(ctx))}
		if uid := c.GetString("user_id"); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if cid := c.GetString("company_id"); cid != "" {
			fields = append(fields, zap.String("company_id", cid))
		}

		ctx = contextutil.WithLogger(ctx, logger.With(fields...))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
