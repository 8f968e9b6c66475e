package app

import (
	"database/sql"
	"time"

	"go-diligince/internal/access"
	"go-diligince/internal/approvalrequest"
	"go-diligince/internal/audit"
	"go-diligince/internal/auth"
	"go-diligince/internal/company"
	"go-diligince/internal/config"
	"go-diligince/internal/domain"
	"go-diligince/internal/messaging/kafka"
	"go-diligince/internal/middleware"
	"go-diligince/internal/notification"
	"go-diligince/internal/purchaseorder"
	"go-diligince/internal/rbac"
	"go-diligince/internal/rbac/infra"
	"go-diligince/internal/requirement"
	"go-diligince/internal/role"
	"go-diligince/internal/shared/counter"
	"go-diligince/internal/subuser"
	"go-diligince/internal/user"
	"go-diligince/internal/userapproval"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (role.Service, error) {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	historyRepo := audit.NewHistoryRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	counterRepo := counter.NewRepository(gormDB)
	companyRepo := company.NewRepository(gormDB)
	roleRepo := role.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	subUserRepo := subuser.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	requirementRepo := requirement.NewRepository(gormDB)
	purchaseOrderRepo := purchaseorder.NewRepository(gormDB)
	userApprovalRepo := userapproval.NewRepository(gormDB)
	approvalRequestRepo := approvalrequest.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return nil, err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, rdb, cfg.GrantCacheTTL, logger)

	// --- Cross-cutting ---
	auditService := audit.NewService(auditRepo, historyRepo, audit.NewZapFallback(logger), logger)
	notificationService := notification.NewService(db, notificationRepo, outboxRepo, logger)

	// --- Services ---
	companyService := company.NewService(companyRepo, logger)
	roleService := role.NewService(db, roleRepo, companyService, subUserRepo, rbacService, auditService, logger)
	roleLookup := role.NewLookup(roleRepo)
	userService := user.NewService(db, userRepo, roleLookup, historyRepo, auditService, logger)
	guard := access.NewGuard(rbacService, subuser.NewReporting(subUserRepo))
	subUserService := subuser.NewService(db, subUserRepo, roleLookup, historyRepo, guard, auditService, notificationService, cfg.InvitationTTL, logger)

	requirementService := requirement.NewService(db, requirementRepo, counterRepo, guard, auditService, notificationService, logger)
	purchaseOrderService := purchaseorder.NewService(db, purchaseOrderRepo, counterRepo, requirement.NewLookup(requirementRepo), guard, auditService, notificationService, logger)
	userApprovalService := userapproval.NewService(db, userApprovalRepo, subUserService, auditService, logger)
	approvalRequestService := approvalrequest.NewService(db, approvalRequestRepo, approvalrequest.Targets{
		domain.UserTypeUser:    approvalrequest.NewTarget(userService.GetByID, userService),
		domain.UserTypeSubUser: approvalrequest.NewTarget(subUserService.GetByID, subUserService),
	}, auditService, notificationService, logger)

	authService := auth.NewService(authRepo, auth.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, logger)

	// --- Handlers ---
	rbacHandler := rbac.NewHandler(rbacService, logger)
	auditHandler := audit.NewHandler(auditService, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)
	companyHandler := company.NewHandler(companyService, logger)
	roleHandler := role.NewHandler(roleService, logger)
	userHandler := user.NewHandler(userService, logger)
	subUserHandler := subuser.NewHandler(subUserService, logger)
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	requirementHandler := requirement.NewHandler(requirementService, logger)
	purchaseOrderHandler := purchaseorder.NewHandler(purchaseOrderService, logger)
	userApprovalHandler := userapproval.NewHandler(userApprovalService, logger)
	approvalRequestHandler := approvalrequest.NewHandler(approvalRequestService, logger)

	// --- Routes Registration ---
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMiddleware)
		rbac.RegisterRoutes(api, rbacHandler, authMiddleware)
		company.RegisterRoutes(api, companyHandler, authMiddleware, rbacService)
		role.RegisterRoutes(api, roleHandler, authMiddleware, rbacService)
		user.RegisterRoutes(api, userHandler, authMiddleware, rbacService)
		subuser.RegisterRoutes(api, subUserHandler, authMiddleware, rbacService)
		audit.RegisterRoutes(api, auditHandler, authMiddleware, rbacService)
		notification.RegisterRoutes(api, notificationHandler, authMiddleware, rbacService)
		requirement.RegisterRoutes(api, requirementHandler, authMiddleware, rbacService, rdb)
		purchaseorder.RegisterRoutes(api, purchaseOrderHandler, authMiddleware, rbacService, rdb)
		userapproval.RegisterRoutes(api, userApprovalHandler, authMiddleware, rbacService, rdb)
		approvalrequest.RegisterRoutes(api, approvalRequestHandler, authMiddleware, rbacService, rdb)
	}

	return roleService, nil
}
