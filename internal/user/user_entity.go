package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a top-level company account. Its role is always a system role;
// custom roles are reserved for sub-users.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	Name      string         `gorm:"column:name;type:varchar(255)"`
	Role      string         `gorm:"column:role;type:varchar(60);not null"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex:uq_users_email"`
	Password  string         `gorm:"column:password;type:text;not null"`
	IsActive  bool           `gorm:"column:is_active;default:true"`
	Version   int64          `gorm:"column:version;not null;default:1"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "users"
}

func (u User) RoleRef() string {
	return "system:" + u.Role
}
