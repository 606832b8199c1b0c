package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestAddressUsecase_Create_NormalizesCountry(t *testing.T) {
	addrRepo := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrRepo)
	ctx := context.Background()

	addrRepo.On("Create", ctx, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 1 && a.Country == "CA" && !a.IsDefault
	})).Return(model.Address{ID: 5, UserID: 1, Line1: "123 Main St", City: "Toronto", PostalCode: "M5V 1A1", Country: "CA"}, nil)

	dto, err := uc.Create(ctx, 1, usecase.AddressCreateRequest{
		Line1: "123 Main St", City: "Toronto", PostalCode: "M5V 1A1", Country: " ca ",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), dto.ID)
	assert.Equal(t, "CA", dto.Country)
	addrRepo.AssertExpectations(t)
}

func TestAddressUsecase_Create_MissingRequiredFields(t *testing.T) {
	uc := usecase.NewAddressUsecase(new(AddressRepoMock))

	_, err := uc.Create(context.Background(), 1, usecase.AddressCreateRequest{
		Line1: "123 Main St", Country: "CA",
	})

	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestAddressUsecase_Create_BadCountryCode(t *testing.T) {
	uc := usecase.NewAddressUsecase(new(AddressRepoMock))

	_, err := uc.Create(context.Background(), 1, usecase.AddressCreateRequest{
		Line1: "123 Main St", City: "Toronto", PostalCode: "M5V 1A1", Country: "CAN",
	})

	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestAddressUsecase_Update_NotOwnedForbidden(t *testing.T) {
	addrRepo := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrRepo)
	ctx := context.Background()

	addrRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(false, nil)

	err := uc.Update(ctx, 1, 5, usecase.AddressUpdateRequest{
		Line1: "x", City: "y", PostalCode: "z", Country: "CA",
	})

	assert.ErrorIs(t, err, usecase.ErrForbidden)
	addrRepo.AssertNotCalled(t, "Update")
}

func TestAddressUsecase_Update_MissingAddressNotFound(t *testing.T) {
	addrRepo := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrRepo)
	ctx := context.Background()

	addrRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(false, gorm.ErrRecordNotFound)

	err := uc.Update(ctx, 1, 5, usecase.AddressUpdateRequest{Country: "CA"})

	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestAddressUsecase_Delete_InUseConflict(t *testing.T) {
	addrRepo := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrRepo)
	ctx := context.Background()

	addrRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(true, nil)
	addrRepo.On("Delete", ctx, int64(5)).Return(assert.AnError)

	err := uc.Delete(ctx, 1, 5)

	assert.ErrorIs(t, err, usecase.ErrConflict)
}

func TestAddressUsecase_SetDefault(t *testing.T) {
	addrRepo := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addrRepo)
	ctx := context.Background()

	addrRepo.On("IsOwnedByUser", ctx, int64(5), int64(1)).Return(true, nil)
	addrRepo.On("SetDefault", ctx, int64(1), int64(5)).Return(nil)

	err := uc.SetDefault(ctx, 1, 5)

	assert.NoError(t, err)
	addrRepo.AssertExpectations(t)
}
