package producer_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-diligince/internal/messaging/kafka"
	"go-diligince/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOutbox struct {
	pending []kafka.OutboxEvent
	sent    []string
	failed  map[string]string
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, e kafka.OutboxEvent) error { return nil }

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return f.pending, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	return nil
}

type fakeWriter struct {
	msgs    []kafkago.Message
	failKey string
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if string(m.Key) == w.failKey {
			return errors.New("broker unavailable")
		}
		w.msgs = append(w.msgs, m)
	}
	return nil
}

func TestProcessPending(t *testing.T) {
	ok, err := kafka.NewOutboxEvent("req-1", "notification", "agg-1", "notification.created", "notifications.v1", map[string]string{"a": "b"})
	require.NoError(t, err)
	bad, err := kafka.NewOutboxEvent("", "notification", "agg-2", "notification.created", "notifications.v1", map[string]string{"a": "c"})
	require.NoError(t, err)

	repo := &fakeOutbox{pending: []kafka.OutboxEvent{ok, bad}}
	writer := &fakeWriter{failKey: "agg-2"}

	sent, err := producer.ProcessPending(context.Background(), repo, writer, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{ok.ID}, repo.sent)
	assert.Contains(t, repo.failed[bad.ID], "broker unavailable")

	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "notifications.v1", msg.Topic)
	assert.JSONEq(t, `{"a":"b"}`, string(msg.Value))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "req-1", headers["request_id"])
	assert.Equal(t, "notification.created", headers["event_type"])
}

func TestProcessPending_Empty(t *testing.T) {
	sent, err := producer.ProcessPending(context.Background(), &fakeOutbox{}, &fakeWriter{}, zap.NewNop())
	assert.NoError(t, err)
	assert.Zero(t, sent)
}
