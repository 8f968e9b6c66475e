package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-diligince/internal/audit"
	"go-diligince/internal/config"
	"go-diligince/internal/messaging/kafka"
	"go-diligince/internal/messaging/kafka/producer"
	"go-diligince/internal/notification"
	"go-diligince/internal/role"
	"go-diligince/internal/shared/connection"
	"go-diligince/internal/subuser"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// invitationSweeper is the slice of subuser.Service the cron job needs.
type invitationSweeper interface {
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
}

// scheduleInvitationSweep registers the expired-invitation cleanup on c.
func scheduleInvitationSweep(ctx context.Context, c *cron.Cron, spec string, sweeper invitationSweeper, logger *zap.Logger) error {
	_, err := c.AddFunc(spec, func() {
		if _, err := sweeper.ExpireInvitations(ctx, time.Now().UTC()); err != nil {
			logger.Error("invitation sweep failed", zap.Error(err))
		}
	})
	return err
}

func RunWorker(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.ConnectRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	subUserRepo := subuser.NewRepository(gormDB)
	auditService := audit.NewService(audit.NewRepository(gormDB), audit.NewHistoryRepository(gormDB), audit.NewZapFallback(logger), logger)
	notificationService := notification.NewService(sqlDB, notification.NewRepository(gormDB), outboxRepo, logger)
	subUserService := subuser.NewService(
		sqlDB,
		subUserRepo,
		role.NewLookup(role.NewRepository(gormDB)),
		audit.NewHistoryRepository(gormDB),
		nil, // the sweep never acts on behalf of a caller
		auditService,
		notificationService,
		cfg.InvitationTTL,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New(cron.WithLocation(time.UTC))
	if err := scheduleInvitationSweep(ctx, scheduler, cfg.InvitationSweepSpec, subUserService, log); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		log,
		cfg.OutboxPollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("worker shutting down")
	cancel()

	return nil
}
