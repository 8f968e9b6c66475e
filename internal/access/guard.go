// Package access refines route-level permission checks once the target
// resource is loaded and its owner is known.
package access

import (
	"context"

	"go-diligince/internal/domain"
	"go-diligince/internal/permission"
)

type Enforcer interface {
	Enforce(ctx context.Context, check domain.PermissionCheck) (bool, error)
}

// Reporting returns the manager a user reports to, or "" when there is none.
type Reporting interface {
	ManagerOf(ctx context.Context, companyID, userID string) (string, error)
}

type Guard struct {
	enforcer  Enforcer
	reporting Reporting
}

func NewGuard(enforcer Enforcer, reporting Reporting) *Guard {
	return &Guard{enforcer: enforcer, reporting: reporting}
}

// Resource identifies who owns a record and which tenant it belongs to.
type Resource struct {
	OwnerID   string
	CompanyID string
}

func (g *Guard) ownership(ctx context.Context, caller domain.Caller, res Resource) (permission.Ownership, error) {
	o := permission.Ownership{
		ActorID:           caller.UserID,
		ActorCompanyID:    caller.CompanyID,
		OwnerID:           res.OwnerID,
		ResourceCompanyID: res.CompanyID,
	}
	if g.reporting != nil && res.OwnerID != "" && res.OwnerID != caller.UserID {
		manager, err := g.reporting.ManagerOf(ctx, res.CompanyID, res.OwnerID)
		if err != nil {
			return o, err
		}
		o.OwnerReportsTo = manager
	}
	return o, nil
}

func (g *Guard) CanAccess(ctx context.Context, caller domain.Caller, module permission.Module, action permission.Action, res Resource) (bool, error) {
	o, err := g.ownership(ctx, caller, res)
	if err != nil {
		return false, err
	}
	return g.enforcer.Enforce(ctx, caller.Check(module, action, permission.LevelFor(o)))
}

// Filter keeps the items the caller may reach. A company-level grant short
// circuits the per-item checks.
func Filter[T any](ctx context.Context, g *Guard, caller domain.Caller, module permission.Module, action permission.Action, items []T, resource func(T) Resource) ([]T, error) {
	all, err := g.enforcer.Enforce(ctx, caller.Check(module, action, permission.LevelCompany))
	if err != nil {
		return nil, err
	}
	if all {
		return items, nil
	}

	decided := make(map[string]bool)
	out := make([]T, 0, len(items))
	for _, it := range items {
		res := resource(it)
		ok, seen := decided[res.OwnerID]
		if !seen {
			if ok, err = g.CanAccess(ctx, caller, module, action, res); err != nil {
				return nil, err
			}
			decided[res.OwnerID] = ok
		}
		if ok {
			out = append(out, it)
		}
	}
	return out, nil
}
