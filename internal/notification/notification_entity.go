package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeApproval     = "approval"
	TypeRoleChange   = "role_change"
	TypeStatusChange = "status_change"
	TypeInvitation   = "invitation"

	ChannelInApp = "in_app"
	ChannelEmail = "email"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_user_read"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Message   string    `gorm:"type:text;not null"`
	Type      string    `gorm:"type:varchar(30);not null"`
	Channels  []string  `gorm:"type:jsonb;serializer:json"`
	Read      bool      `gorm:"not null;default:false;index:idx_notifications_user_read"`
	CreatedAt time.Time
}
