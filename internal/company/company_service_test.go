package company_test

import (
	"context"
	"errors"
	"testing"

	"go-diligince/internal/company"
	companyerrors "go-diligince/internal/company/errors"
	companyMock "go-diligince/internal/company/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func TestService_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := companyMock.NewMockRepository(ctrl)
	service := company.NewService(mockRepo)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		mockComp := &company.Company{
			ID:       id,
			Name:     "Acme Steel",
			Type:     company.TypeIndustry,
			Email:    "ops@acme.test",
			IsActive: true,
		}

		mockRepo.EXPECT().GetByID(ctx, id).Return(mockComp, nil)

		resp, err := service.GetByID(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, mockComp.Name, resp.Name)
		assert.Equal(t, company.TypeIndustry, resp.Type)
		assert.Equal(t, mockComp.ID.String(), resp.ID)
	})

	t.Run("Not Found", func(t *testing.T) {
		id := uuid.New()
		mockRepo.EXPECT().GetByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.GetByID(ctx, id.String())
		assert.ErrorIs(t, err, companyerrors.ErrCompanyNotFound)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		_, err := service.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, companyerrors.ErrInvalidCompanyID)
	})
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := companyMock.NewMockRepository(ctrl)
	service := company.NewService(mockRepo)
	ctx := context.Background()

	t.Run("Success Update Name", func(t *testing.T) {
		id := uuid.New()
		mockComp := &company.Company{
			ID:       id,
			Name:     "Old Name",
			Type:     company.TypeVendor,
			Email:    "test@company.com",
			IsActive: true,
		}

		mockRepo.EXPECT().GetByID(ctx, id).Return(mockComp, nil)
		mockRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, c *company.Company) error {
			assert.Equal(t, "New Name", c.Name)
			assert.Equal(t, company.TypeVendor, c.Type)
			return nil
		})

		resp, err := service.Update(ctx, id.String(), company.UpdateCompanyRequest{
			Name: "  New Name ",
		})

		assert.NoError(t, err)
		assert.Equal(t, "New Name", resp.Name)
	})

	t.Run("Deactivate", func(t *testing.T) {
		id := uuid.New()
		inactive := false
		mockRepo.EXPECT().GetByID(ctx, id).Return(&company.Company{ID: id, Name: "X", IsActive: true}, nil)
		mockRepo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		resp, err := service.Update(ctx, id.String(), company.UpdateCompanyRequest{IsActive: &inactive})

		assert.NoError(t, err)
		assert.False(t, resp.IsActive)
	})

	t.Run("Update Failed", func(t *testing.T) {
		id := uuid.New()
		mockRepo.EXPECT().GetByID(ctx, id).Return(&company.Company{ID: id, Name: "X"}, nil)
		mockRepo.EXPECT().Update(ctx, gomock.Any()).Return(errors.New("db down"))

		_, err := service.Update(ctx, id.String(), company.UpdateCompanyRequest{Name: "Y"})
		assert.Error(t, err)
	})
}

func TestService_CompanyType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := companyMock.NewMockRepository(ctrl)
	service := company.NewService(mockRepo)
	ctx := context.Background()

	t.Run("Returns type", func(t *testing.T) {
		id := uuid.New()
		mockRepo.EXPECT().GetByID(ctx, id).Return(&company.Company{ID: id, Type: company.TypeVendor}, nil)

		typ, err := service.CompanyType(ctx, id.String())
		assert.NoError(t, err)
		assert.Equal(t, company.TypeVendor, typ)
	})

	t.Run("Missing company keeps repository error", func(t *testing.T) {
		id := uuid.New()
		mockRepo.EXPECT().GetByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.CompanyType(ctx, id.String())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
