package role

import (
	"time"

	"go-diligince/internal/permission"

	"github.com/google/uuid"
)

const (
	CompanyTypeIndustry = "industry"
	CompanyTypeVendor   = "vendor"
)

// SystemRole is seeded at startup and never written by tenants.
type SystemRole struct {
	Name        string    `gorm:"type:varchar(60);primaryKey" yaml:"name"`
	DisplayName string    `gorm:"type:varchar(120);not null" yaml:"display_name"`
	Permissions []string  `gorm:"type:jsonb;serializer:json" yaml:"permissions"`
	IsActive    bool      `gorm:"not null;default:true" yaml:"is_active"`
	CreatedAt   time.Time `yaml:"-"`
	UpdatedAt   time.Time `yaml:"-"`
}

func (SystemRole) TableName() string {
	return "system_roles"
}

// CustomRole is a tenant-authored bundle of grants. Names are unique among
// the active roles of a company.
type CustomRole struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uq_custom_roles_company_name,where:is_active = true"`
	Name        string            `gorm:"type:varchar(60);not null;uniqueIndex:uq_custom_roles_company_name,where:is_active = true"`
	DisplayName string            `gorm:"type:varchar(120);not null"`
	Description string            `gorm:"type:text"`
	CompanyType string            `gorm:"type:varchar(20);not null"`
	Permissions permission.Grants `gorm:"type:jsonb;serializer:json"`
	IsActive    bool              `gorm:"not null;default:true"`
	CreatedBy   uuid.UUID         `gorm:"type:uuid;not null"`
	UpdatedBy   *uuid.UUID        `gorm:"type:uuid"`
	Version     int64             `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CustomRole) TableName() string {
	return "custom_roles"
}
