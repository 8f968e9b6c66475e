package requirement_test

import (
	"context"
	"testing"

	"go-diligince/internal/requirement"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_Sourceable(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	companyID := uuid.New()

	statuses := map[string]bool{
		requirement.StatusDraft:     false,
		requirement.StatusApproved:  true,
		requirement.StatusPublished: true,
		requirement.StatusClosed:    false,
	}
	ids := map[string]string{}
	for status := range statuses {
		r := &requirement.Requirement{ID: uuid.New(), CompanyID: companyID, Status: status}
		require.NoError(t, repo.Create(ctx, r))
		ids[status] = r.ID.String()
	}

	lookup := requirement.NewLookup(repo)
	for status, want := range statuses {
		got, err := lookup.Sourceable(ctx, companyID.String(), ids[status])
		require.NoError(t, err)
		assert.Equal(t, want, got, status)
	}

	got, err := lookup.Sourceable(ctx, uuid.NewString(), ids[requirement.StatusApproved])
	require.NoError(t, err)
	assert.False(t, got)
}
