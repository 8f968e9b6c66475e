package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"go-diligince/internal/events"

	"github.com/redis/go-redis/v9"
)

// RedisRelay publishes notification events on the per-user channel that the
// real-time gateways subscribe to.
type RedisRelay struct {
	rdb *redis.Client
}

func NewRedisRelay(rdb *redis.Client) *RedisRelay {
	return &RedisRelay{rdb: rdb}
}

func RelayChannel(userID string) string {
	return fmt.Sprintf(events.NotificationRelayChannelFmt, userID)
}

func (r *RedisRelay) Relay(ctx context.Context, event events.NotificationCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, RelayChannel(event.UserID), payload).Err()
}
