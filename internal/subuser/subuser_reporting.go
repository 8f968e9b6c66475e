package subuser

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Reporting answers who a user reports to. Top-level accounts and unknown ids
// report to no one.
type Reporting struct {
	repo Repository
}

func NewReporting(repo Repository) *Reporting {
	return &Reporting{repo: repo}
}

func (r *Reporting) ManagerOf(ctx context.Context, companyID, userID string) (string, error) {
	u, err := r.repo.FindByIDAndCompany(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if u.ReportingTo == nil {
		return "", nil
	}
	return u.ReportingTo.String(), nil
}
