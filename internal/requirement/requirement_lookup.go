package requirement

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Lookup lets other features check a requirement's state without going
// through access refinement.
type Lookup struct {
	repo Repository
}

func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

// Sourceable reports whether purchase orders may be raised against the
// requirement. A missing requirement is not sourceable.
func (l *Lookup) Sourceable(ctx context.Context, companyID, id string) (bool, error) {
	r, err := l.repo.FindByIDAndCompany(ctx, companyID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.Status == StatusApproved || r.Status == StatusPublished, nil
}
