package notification_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-diligince/internal/events"
	"go-diligince/internal/notification"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRelay_PublishesOnUserChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, notification.RelayChannel("u1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	relay := notification.NewRedisRelay(rdb)
	require.NoError(t, relay.Relay(ctx, events.NotificationCreatedEvent{
		NotificationID: "n1",
		UserID:         "u1",
		Title:          "Approved",
	}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "notifications:u1", msg.Channel)
		var got events.NotificationCreatedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "n1", got.NotificationID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message relayed")
	}
}
