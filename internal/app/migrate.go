package app

import (
	"context"

	"go-diligince/internal/approvalrequest"
	"go-diligince/internal/audit"
	"go-diligince/internal/company"
	"go-diligince/internal/notification"
	"go-diligince/internal/purchaseorder"
	"go-diligince/internal/requirement"
	"go-diligince/internal/role"
	"go-diligince/internal/subuser"
	"go-diligince/internal/user"
	"go-diligince/internal/userapproval"

	"gorm.io/gorm"
)

// Tables the repositories write with raw SQL have no gorm model.
var rawTables = []string{
	`CREATE TABLE IF NOT EXISTS outbox_events (
	id uuid PRIMARY KEY,
	request_id text,
	aggregate_type text NOT NULL,
	aggregate_id text NOT NULL,
	event_type text NOT NULL,
	topic text NOT NULL,
	payload jsonb NOT NULL,
	status text NOT NULL,
	retry_count int NOT NULL DEFAULT 0,
	next_retry_at timestamptz,
	error_message text,
	processed_at timestamptz,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created ON outbox_events (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS company_counters (
	company_id uuid NOT NULL,
	counter_type text NOT NULL,
	last_value bigint NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (company_id, counter_type)
)`,
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&company.Company{},
		&role.SystemRole{},
		&role.CustomRole{},
		&user.User{},
		&subuser.SubUser{},
		&audit.Entry{},
		&audit.RoleAssignment{},
		&notification.Notification{},
		&requirement.Requirement{},
		&purchaseorder.PurchaseOrder{},
		&userapproval.UserApproval{},
		&approvalrequest.UserApprovalRequest{},
	); err != nil {
		return err
	}
	for _, stmt := range rawTables {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedSystemRoles(ctx context.Context, roles role.Service) error {
	defs, err := role.LoadSystemRoles()
	if err != nil {
		return err
	}
	return roles.SeedSystemRoles(ctx, defs)
}
