package app

import (
	"context"
	"net/http"

	"go-diligince/internal/config"
	"go-diligince/internal/middleware"
	"go-diligince/internal/shared/connection"
	"go-diligince/internal/shared/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure, migrates and seeds the schema, and
// registers every module on router. The returned func releases connections.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	log := logger.Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.ConnectRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.ConnectRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Info("redis connection established")

	cleanup := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}

	if err := migrate(gormDB); err != nil {
		cleanup()
		return nil, err
	}

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		middleware.Metrics(),
	)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	roles, err := registerModules(router, cfg, sqlDB, gormDB, redisClient, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	if err := seedSystemRoles(ctx, roles); err != nil {
		cleanup()
		return nil, err
	}
	log.Info("system roles seeded")

	return cleanup, nil
}
