package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProductUsecase() (*usecase.ProductUsecase, *ProductRepoMock, *CategoryRepoMock, *BrandRepoMock, *InventoryRepoMock, *AuditRepoMock) {
	prodRepo := new(ProductRepoMock)
	catRepo := new(CategoryRepoMock)
	brandRepo := new(BrandRepoMock)
	invRepo := new(InventoryRepoMock)
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewProductUsecase(prodRepo, catRepo, brandRepo, invRepo, auditRepo)
	return uc, prodRepo, catRepo, brandRepo, invRepo, auditRepo
}

func TestProductUsecase_ListPublicProducts_InvalidPage(t *testing.T) {
	uc, _, _, _, _, _ := newProductUsecase()

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "invalid page")
}

func TestProductUsecase_ListPublicProducts_InvalidSort(t *testing.T) {
	uc, _, _, _, _, _ := newProductUsecase()

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Page: 1, Limit: 20, Sort: "popularity",
	})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "invalid sort")
}

func TestProductUsecase_ListPublicProducts_MinOverMax(t *testing.T) {
	uc, _, _, _, _, _ := newProductUsecase()

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Page: 1, Limit: 20,
		MinPrice: int64Ptr(5000), MaxPrice: int64Ptr(1000),
	})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "min_price must be <= max_price")
}

func TestProductUsecase_ListPublicProducts_UnknownCategorySlug(t *testing.T) {
	uc, _, catRepo, _, _, _ := newProductUsecase()
	ctx := context.Background()

	catRepo.On("FindBySlug", ctx, "ghost").Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.ListPublicProducts(ctx, usecase.ListProductsInput{
		Page: 1, Limit: 20, CategorySlug: "ghost",
	})

	assertHTTPStatus(t, err, 404)
	assertErrContains(t, err, "category not found")
}

func TestProductUsecase_ListPublicProducts_ProductSaleBeatsCategory(t *testing.T) {
	uc, prodRepo, catRepo, _, _, _ := newProductUsecase()
	ctx := context.Background()

	prodRepo.On("ListPublic", ctx, mock.AnythingOfType("repository.ProductListQuery")).
		Return([]model.Product{
			// 商品30% vs カテゴリ10% → 商品が勝つ
			{ID: 1, Title: "A", Slug: "a", PriceCents: 1000, Currency: "CAD",
				IsActive: true, SalePercent: int64Ptr(30), CategoryID: int64Ptr(3)},
			// 商品側なし → カテゴリ10%が効く
			{ID: 2, Title: "B", Slug: "b", PriceCents: 1000, Currency: "CAD",
				IsActive: true, CategoryID: int64Ptr(3)},
			// どちらもなし → 定価
			{ID: 3, Title: "C", Slug: "c", PriceCents: 1000, Currency: "CAD",
				IsActive: true},
		}, int64(3), nil)
	// カテゴリは一覧あたり1回だけ引く
	catRepo.On("FindByID", ctx, int64(3)).Return(model.Category{
		ID: 3, SalePercent: int64Ptr(10),
	}, nil).Once()

	out, err := uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 20})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 3)

	assert.True(t, out.Items[0].IsOnSale)
	assert.Equal(t, int64(700), out.Items[0].SalePrice)
	assert.Equal(t, int64(30), *out.Items[0].SalePercent)

	assert.True(t, out.Items[1].IsOnSale)
	assert.Equal(t, int64(900), out.Items[1].SalePrice)
	assert.Equal(t, int64(10), *out.Items[1].SalePercent)

	assert.False(t, out.Items[2].IsOnSale)
	assert.Equal(t, int64(1000), out.Items[2].SalePrice)
	assert.Nil(t, out.Items[2].SalePercent)

	catRepo.AssertExpectations(t)
}

func TestProductUsecase_GetProductDetail_InactiveHidden(t *testing.T) {
	uc, prodRepo, _, _, _, _ := newProductUsecase()
	ctx := context.Background()

	prodRepo.On("FindByID", ctx, int64(7)).Return(model.Product{
		ID: 7, IsActive: false,
	}, nil)

	_, err := uc.GetProductDetail(ctx, 7)

	assertHTTPStatus(t, err, 404)
	prodRepo.AssertNotCalled(t, "ListImages")
}

func TestProductUsecase_GetProductBySlug(t *testing.T) {
	uc, prodRepo, _, _, _, _ := newProductUsecase()
	ctx := context.Background()

	prodRepo.On("FindBySlug", ctx, "trail-shoe").Return(model.Product{
		ID: 7, Title: "Trail Shoe", Slug: "trail-shoe",
		PriceCents: 2500, Currency: "CAD", IsActive: true,
	}, nil)
	prodRepo.On("ListImages", ctx, int64(7)).Return([]model.ProductImage{
		{ID: 1, ProductID: 7, URL: "https://img.example/1.jpg"},
	}, nil)

	out, err := uc.GetProductBySlug(ctx, "trail-shoe")

	assert.NoError(t, err)
	assert.Equal(t, "trail-shoe", out.Slug)
	assert.Len(t, out.Images, 1)
	prodRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminCreateProduct_DefaultsCurrency(t *testing.T) {
	uc, prodRepo, _, _, _, _ := newProductUsecase()
	ctx := context.Background()

	prodRepo.On("Create", ctx, mock.MatchedBy(func(p model.Product) bool {
		return p.Currency == model.DefaultCurrency && p.Title == "Mug"
	})).Return(model.Product{ID: 55}, nil)

	id, err := uc.AdminCreateProduct(ctx, 1, usecase.AdminCreateProductInput{
		Title: "Mug", Slug: "mug", PriceCents: 1500, Stock: 10, IsActive: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(55), id)
	prodRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminCreateProduct_SalePercentOutOfRange(t *testing.T) {
	uc, prodRepo, _, _, _, _ := newProductUsecase()

	_, err := uc.AdminCreateProduct(context.Background(), 1, usecase.AdminCreateProductInput{
		Title: "Mug", Slug: "mug", PriceCents: 1500,
		SalePercent: int64Ptr(120),
	})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "sale_percent must be 0-100")
	prodRepo.AssertNotCalled(t, "Create")
}

func TestProductUsecase_AdminCreateProduct_UnknownBrand(t *testing.T) {
	uc, _, _, brandRepo, _, _ := newProductUsecase()
	ctx := context.Background()

	brandRepo.On("FindByID", ctx, int64(9)).Return(model.Brand{}, repo.ErrNotFound)

	_, err := uc.AdminCreateProduct(ctx, 1, usecase.AdminCreateProductInput{
		Title: "Mug", Slug: "mug", PriceCents: 1500,
		BrandID: int64Ptr(9),
	})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "brand not found")
}

func TestProductUsecase_AdminUpdateInventory_WritesAdjustmentAndAudit(t *testing.T) {
	uc, prodRepo, _, _, invRepo, auditRepo := newProductUsecase()
	ctx := context.Background()

	prodRepo.On("FindByID", ctx, int64(7)).Return(model.Product{ID: 7, Stock: 3}, nil)
	invRepo.On("SetStock", ctx, int64(7), int64(10)).Return(nil)
	invRepo.On("CreateAdjustment", ctx, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 7 && a.AdminUserID == 2 && a.Delta == 7 && a.Reason == "restock"
	})).Return(nil)
	auditRepo.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 2 &&
			l.Action == model.AuditActionUpdateStock &&
			l.ResourceType == model.AuditResourceProduct &&
			l.ResourceID == 7 &&
			l.BeforeJSON == `{"stock":3}` &&
			l.AfterJSON == `{"stock":10}`
	})).Return(nil)

	err := uc.AdminUpdateInventory(ctx, 2, 7, 10, "restock")

	assert.NoError(t, err)
	invRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateInventory_ReasonRequired(t *testing.T) {
	uc, _, _, _, invRepo, _ := newProductUsecase()

	err := uc.AdminUpdateInventory(context.Background(), 2, 7, 10, "  ")

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "reason required")
	invRepo.AssertNotCalled(t, "SetStock")
}
