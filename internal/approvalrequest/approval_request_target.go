package approvalrequest

import (
	"context"
	"database/sql"

	"go-diligince/internal/domain"
)

// Applier merges a change set onto one account inside the caller's transaction.
// user.Service and subuser.Service both satisfy it.
type Applier interface {
	ApplyChanges(ctx context.Context, tx *sql.Tx, companyID, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error)
}

// Target is one account population a request can point at.
type Target struct {
	lookup  func(ctx context.Context, companyID, id string) error
	applier Applier
}

// NewTarget adapts a GetByID-style lookup and an Applier into a Target.
func NewTarget[R any](get func(ctx context.Context, companyID, id string) (R, error), applier Applier) Target {
	return Target{
		lookup: func(ctx context.Context, companyID, id string) error {
			_, err := get(ctx, companyID, id)
			return err
		},
		applier: applier,
	}
}

// Targets is keyed by domain.UserTypeUser and domain.UserTypeSubUser.
type Targets map[string]Target
