package role

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Lookup answers existence questions about roles for other features.
type Lookup struct {
	repo Repository
}

func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

func (l *Lookup) CustomRoleActive(ctx context.Context, companyID, roleID string) (bool, error) {
	_, err := l.repo.FindActiveByIDAndCompany(ctx, companyID, roleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (l *Lookup) SystemRoleExists(ctx context.Context, name string) (bool, error) {
	_, err := l.repo.FindActiveSystemRole(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
