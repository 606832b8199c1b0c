package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func newCartUsecase() (*usecase.CartUsecase, *CartRepoMock, *CartItemRepoMock, *ProductRepoMock, *CategoryRepoMock, *PromoRepoMock) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	prodRepo := new(ProductRepoMock)
	catRepo := new(CategoryRepoMock)
	promoRepo := new(PromoRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, itemRepo, prodRepo, catRepo, promoRepo)
	return uc, cartRepo, itemRepo, prodRepo, catRepo, promoRepo
}

func TestCartUsecase_GetCart_TotalsWithSalePrice(t *testing.T) {
	uc, cartRepo, itemRepo, prodRepo, catRepo, _ := newCartUsecase()
	ctx := context.Background()

	cartRepo.On("GetOrCreateActiveByUserID", ctx, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	itemRepo.On("ListByCartID", ctx, int64(10)).Return([]model.CartItem{
		// 20%セール済みの単価（定価2500 → 2000）
		{ID: 100, CartID: 10, ProductID: 7, Quantity: 2, UnitPriceCents: 2000},
	}, nil)
	prodRepo.On("FindByID", ctx, int64(7)).Return(model.Product{
		ID: 7, Title: "Trail Shoe", Slug: "trail-shoe",
		PriceCents: 2500, Currency: "CAD", Stock: 5, IsActive: true,
		SalePercent: int64Ptr(20),
	}, nil)

	out, err := uc.GetCart(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(4000), out.Items[0].LineTotalCents)
	assert.Equal(t, int64(2500), out.Items[0].ListPriceCents)
	assert.Equal(t, int64(4000), out.SubtotalCents)
	assert.Equal(t, int64(5000), out.OriginalSubtotalCents)
	assert.Equal(t, int64(1000), out.SaleSavingsCents)
	// 4000 * 13% = 520（切り捨て）
	assert.Equal(t, int64(520), out.TaxCents)
	assert.Equal(t, int64(999), out.ShippingCents)
	assert.Equal(t, int64(5519), out.TotalCents)
	assert.Equal(t, "CAD", out.Currency)
	cartRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
	prodRepo.AssertExpectations(t)
	catRepo.AssertExpectations(t)
}

func TestCartUsecase_GetCart_FreeShippingOverThreshold(t *testing.T) {
	uc, cartRepo, itemRepo, prodRepo, _, _ := newCartUsecase()
	ctx := context.Background()

	cartRepo.On("GetOrCreateActiveByUserID", ctx, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1}, nil)
	itemRepo.On("ListByCartID", ctx, int64(10)).Return([]model.CartItem{
		{ID: 100, CartID: 10, ProductID: 7, Quantity: 1, UnitPriceCents: 12000},
	}, nil)
	prodRepo.On("FindByID", ctx, int64(7)).Return(model.Product{
		ID: 7, Title: "Jacket", Slug: "jacket",
		PriceCents: 12000, Currency: "CAD", Stock: 3, IsActive: true,
	}, nil)

	out, err := uc.GetCart(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.ShippingCents)
	assert.Equal(t, int64(12000+1560), out.TotalCents)
}

func TestCartUsecase_GetCartCount_NoCartReturnsZero(t *testing.T) {
	uc, cartRepo, _, _, _, _ := newCartUsecase()
	ctx := context.Background()

	cartRepo.On("FindActiveByUserID", ctx, int64(1)).
		Return(model.Cart{}, repo.ErrNotFound)

	count, err := uc.GetCartCount(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
	cartRepo.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_InsufficientStock(t *testing.T) {
	uc, cartRepo, itemRepo, prodRepo, _, _ := newCartUsecase()
	ctx := context.Background()

	cartRepo.On("GetOrCreateActiveByUserID", ctx, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1}, nil)
	prodRepo.On("FindByID", ctx, int64(7)).Return(model.Product{
		ID: 7, PriceCents: 1000, Stock: 2, IsActive: true,
	}, nil)
	// 既存1個 + 追加2個 > 在庫2個
	itemRepo.On("ListByCartID", ctx, int64(10)).Return([]model.CartItem{
		{ID: 100, CartID: 10, ProductID: 7, Quantity: 1, UnitPriceCents: 1000},
	}, nil)

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 7, Quantity: 2})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "insufficient stock: only 2 available")
	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct")
}

func TestCartUsecase_AddToCart_UpsertsWithCurrentEffectivePrice(t *testing.T) {
	uc, cartRepo, itemRepo, prodRepo, catRepo, _ := newCartUsecase()
	ctx := context.Background()

	cartRepo.On("GetOrCreateActiveByUserID", ctx, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1}, nil)
	// 商品自体にセールは無いが、カテゴリが10%セール中
	prodRepo.On("FindByID", ctx, int64(7)).Return(model.Product{
		ID: 7, Title: "Mug", Slug: "mug",
		PriceCents: 1500, Currency: "CAD", Stock: 10, IsActive: true,
		CategoryID: int64Ptr(3),
	}, nil)
	catRepo.On("FindByID", ctx, int64(3)).Return(model.Category{
		ID: 3, SalePercent: int64Ptr(10),
	}, nil)
	itemRepo.On("ListByCartID", ctx, int64(10)).Return([]model.CartItem{}, nil)
	// 1500 - 1500*10/100 = 1350 が単価として渡る
	itemRepo.On("UpsertByCartAndProduct", ctx, int64(10), int64(7), int64(2), int64(1350)).
		Return(nil)

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 7, Quantity: 2})

	assert.NoError(t, err)
	itemRepo.AssertExpectations(t)
	catRepo.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_InactiveProductNotFound(t *testing.T) {
	uc, cartRepo, _, prodRepo, _, _ := newCartUsecase()
	ctx := context.Background()

	cartRepo.On("GetOrCreateActiveByUserID", ctx, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1}, nil)
	prodRepo.On("FindByID", ctx, int64(7)).Return(model.Product{
		ID: 7, PriceCents: 1000, Stock: 5, IsActive: false,
	}, nil)

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 7, Quantity: 1})

	assertHTTPStatus(t, err, 404)
	assertErrContains(t, err, "product not found")
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	uc, _, _, _, _, _ := newCartUsecase()

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 7, Quantity: 0})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_UpdateCartItem_NotOwned(t *testing.T) {
	uc, _, itemRepo, _, _, _ := newCartUsecase()
	ctx := context.Background()

	itemRepo.On("IsOwnedByUser", ctx, int64(100), int64(1)).Return(false, nil)

	_, err := uc.UpdateCartItem(ctx, 1, 100, usecase.UpdateCartItemInput{Quantity: 2})

	assertHTTPStatus(t, err, 404)
	itemRepo.AssertNotCalled(t, "UpdateQuantity")
}

func TestCartUsecase_ApplyPromo_ValidCodeIsLookupOnly(t *testing.T) {
	uc, _, _, _, _, promoRepo := newCartUsecase()
	ctx := context.Background()

	// 入力は正規化（trim + 大文字化）してから照会する
	promoRepo.On("FindActiveByCode", ctx, "SAVE10").Return(model.PromoCode{
		ID: 1, Code: "SAVE10", DiscountPercent: 10, IsActive: true,
	}, nil)

	out, err := uc.ApplyPromo(ctx, 1, "  save10  ")

	assert.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, "SAVE10", out.Code)
	assert.Equal(t, int64(10), out.DiscountPercent)
	promoRepo.AssertExpectations(t)
}

func TestCartUsecase_ApplyPromo_UnknownCode(t *testing.T) {
	uc, _, _, _, _, promoRepo := newCartUsecase()
	ctx := context.Background()

	promoRepo.On("FindActiveByCode", ctx, "NOPE").Return(model.PromoCode{}, repo.ErrNotFound)

	_, err := uc.ApplyPromo(ctx, 1, "nope")

	assertHTTPStatus(t, err, 404)
	assertErrContains(t, err, "invalid promo code")
}

func TestCartUsecase_ApplyPromo_EmptyCode(t *testing.T) {
	uc, _, _, _, _, _ := newCartUsecase()

	_, err := uc.ApplyPromo(context.Background(), 1, "   ")

	assertHTTPStatus(t, err, 400)
}
