package consumer

import (
	"context"
	"encoding/json"

	"go-diligince/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Relay interface {
	Relay(ctx context.Context, event events.NotificationCreatedEvent) error
}

// ConsumeNotifications forwards every notification event to the real-time
// relay. Messages that fail to relay are left uncommitted for redelivery.
func ConsumeNotifications(
	ctx context.Context,
	reader MessageReader,
	relay Relay,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notifications")
	log.Info("notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification consumer stopped")
				return
			}
			log.Error("fetch notification message failed", zap.Error(err))
			continue
		}

		var event events.NotificationCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode notification event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := relay.Relay(ctx, event); err != nil {
			log.Error("relay notification failed",
				zap.String("notification_id", event.NotificationID),
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit notification message failed", zap.Error(err))
			continue
		}

		log.Debug("notification relayed",
			zap.String("notification_id", event.NotificationID),
			zap.String("user_id", event.UserID),
		)
	}
}
