package events

import "time"

const (
	NotificationsTopic          = "notifications.v1"
	NotificationCreatedType     = "notification.created"
	NotificationAggregateType   = "notification"
	NotificationRelayChannelFmt = "notifications:%s"
)

type NotificationCreatedEvent struct {
	EventType      string    `json:"event_type"`
	NotificationID string    `json:"notification_id"`
	CompanyID      string    `json:"company_id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Type           string    `json:"type"`
	Channels       []string  `json:"channels,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
