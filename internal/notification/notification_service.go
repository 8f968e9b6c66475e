package notification

import (
	"context"
	"database/sql"
	"time"

	"go-diligince/internal/events"
	"go-diligince/internal/messaging/kafka"
	notificationerrors "go-diligince/internal/notification/errors"
	"go-diligince/internal/shared/contextutil"
	"go-diligince/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier is the fire-and-forget side used by mutating services. Callers
// discard the error explicitly; failures are already logged and counted.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	Notifier
	ListForUser(ctx context.Context, companyID, userID string, unreadOnly bool) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, companyID, userID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, logger: l}
}

func (s *service) Notify(ctx context.Context, msg Message) error {
	err := s.notify(ctx, msg)
	if err != nil {
		metrics.NotificationDispatchFailures.Inc()
		s.logger.Error("notification dispatch failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("user_id", msg.UserID),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
	}
	return err
}

func (s *service) notify(ctx context.Context, msg Message) error {
	companyID, err := uuid.Parse(msg.CompanyID)
	if err != nil {
		return notificationerrors.ErrInvalidRecipient
	}
	userID, err := uuid.Parse(msg.UserID)
	if err != nil {
		return notificationerrors.ErrInvalidRecipient
	}
	channels := msg.Channels
	if len(channels) == 0 {
		channels = []string{ChannelInApp}
	}

	n := &Notification{
		ID:        uuid.New(),
		CompanyID: companyID,
		UserID:    userID,
		Title:     msg.Title,
		Message:   msg.Message,
		Type:      msg.Type,
		Channels:  channels,
		CreatedAt: time.Now().UTC(),
	}

	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		events.NotificationAggregateType,
		n.ID.String(),
		events.NotificationCreatedType,
		events.NotificationsTopic,
		events.NotificationCreatedEvent{
			EventType:      events.NotificationCreatedType,
			NotificationID: n.ID.String(),
			CompanyID:      msg.CompanyID,
			UserID:         msg.UserID,
			Title:          n.Title,
			Message:        n.Message,
			Type:           n.Type,
			Channels:       n.Channels,
			OccurredAt:     n.CreatedAt,
		},
	)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, n); err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Debug("notification queued",
		zap.String("notification_id", n.ID.String()),
		zap.String("outbox_id", event.ID),
	)
	return nil
}

func (s *service) ListForUser(ctx context.Context, companyID, userID string, unreadOnly bool) ([]NotificationResponse, error) {
	rows, err := s.repo.ListByUser(ctx, companyID, userID, unreadOnly)
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := make([]NotificationResponse, len(rows))
	for i, n := range rows {
		resp[i] = NotificationResponse{
			ID:        n.ID.String(),
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Channels:  n.Channels,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, companyID, userID, id string) error {
	ok, err := s.repo.MarkRead(ctx, companyID, userID, id)
	if err != nil {
		s.logger.Error("mark notification read failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}
	if !ok {
		return notificationerrors.ErrNotificationNotFound
	}
	return nil
}
