package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	categoryRepo  repo.CategoryRepository
	brandRepo     repo.BrandRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	brandRepo repo.BrandRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		brandRepo:     brandRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

// セール情報込みの商品レスポンス。
// sale_price_centsは常に入れる（セールなしなら定価と同じ）。
type ProductOutput struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	BrandID     *int64               `json:"brand_id,omitempty"`
	CategoryID  *int64               `json:"category_id,omitempty"`
	Description string               `json:"description"`
	PriceCents  int64                `json:"price_cents"`
	Currency    string               `json:"currency"`
	Stock       int64                `json:"stock"`
	IsActive    bool                 `json:"is_active"`
	IsOnSale    bool                 `json:"is_on_sale"`
	SalePercent *int64               `json:"sale_percent,omitempty"`
	SalePrice   int64                `json:"sale_price_cents"`
	Images      []model.ProductImage `json:"images,omitempty"`
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page         int
	Limit        int
	Q            string
	MinPrice     *int64
	MaxPrice     *int64
	CategorySlug string
	Sort         string
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 商品→レスポンスDTO。カテゴリのセール率はcategoryPercentで渡す。
func toProductOutput(p model.Product, categoryPercent *int64) ProductOutput {
	effective := pricing.EffectiveUnitPrice(p.PriceCents, p.SalePercent, categoryPercent)
	percent, onSale := pricing.ActiveSalePercent(p.SalePercent, categoryPercent)

	out := ProductOutput{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		BrandID:     p.BrandID,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		IsOnSale:    onSale,
		SalePrice:   effective,
	}
	if onSale {
		out.SalePercent = &percent
	}
	return out
}

// カテゴリのセール率をまとめて引く（一覧で同じカテゴリを何度も引かないため）
func (u *ProductUsecase) categoryPercents(ctx context.Context, items []model.Product) map[int64]*int64 {
	percents := map[int64]*int64{}
	for _, p := range items {
		if p.CategoryID == nil {
			continue
		}
		if _, ok := percents[*p.CategoryID]; ok {
			continue
		}
		c, err := u.categoryRepo.FindByID(ctx, *p.CategoryID)
		if err != nil {
			percents[*p.CategoryID] = nil
			continue
		}
		percents[*p.CategoryID] = c.SalePercent
	}
	return percents
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	//カテゴリ絞り込みはslugで受けてIDに解決する
	var categoryID *int64
	if s := strings.TrimSpace(in.CategorySlug); s != "" {
		c, err := u.categoryRepo.FindBySlug(ctx, s)
		if err == repo.ErrNotFound {
			return ProductListOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
		}
		if err != nil {
			return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		categoryID = &c.ID
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		CategoryID: categoryID,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	percents := u.categoryPercents(ctx, items)
	outs := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		var cp *int64
		if p.CategoryID != nil {
			cp = percents[*p.CategoryID]
		}
		outs = append(outs, toProductOutput(p, cp))
	}

	return ProductListOutput{
		Items: outs,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return u.detailOutput(ctx, p)
}

// slugでの商品詳細（公開ページ用）
func (u *ProductUsecase) GetProductBySlug(ctx context.Context, slug string) (ProductOutput, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	p, err := u.productRepo.FindBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return u.detailOutput(ctx, p)
}

func (u *ProductUsecase) detailOutput(ctx context.Context, p model.Product) (ProductOutput, error) {
	var cp *int64
	if p.CategoryID != nil {
		c, err := u.categoryRepo.FindByID(ctx, *p.CategoryID)
		if err == nil {
			cp = c.SalePercent
		}
	}

	out := toProductOutput(p, cp)

	images, err := u.productRepo.ListImages(ctx, p.ID)
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	out.Images = images
	return out, nil
}

type AdminCreateProductInput struct {
	Title       string
	Slug        string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int64
	IsActive    bool
	SalePercent *int64
	BrandID     *int64
	CategoryID  *int64
}

func (u *ProductUsecase) validateProductInput(ctx context.Context, in AdminCreateProductInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return NewHTTPError(http.StatusBadRequest, "slug required")
	}
	if in.PriceCents < 0 {
		return NewHTTPError(http.StatusBadRequest, "price_cents must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if in.SalePercent != nil && (*in.SalePercent < 0 || *in.SalePercent > 100) {
		return NewHTTPError(http.StatusBadRequest, "sale_percent must be 0-100")
	}

	//参照先が実在するか
	if in.BrandID != nil {
		if _, err := u.brandRepo.FindByID(ctx, *in.BrandID); err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "brand not found")
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}
	if in.CategoryID != nil {
		if _, err := u.categoryRepo.FindByID(ctx, *in.CategoryID); err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "category not found")
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminCreateProductInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validateProductInput(ctx, in); err != nil {
		return 0, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}
	if len(currency) != 3 {
		return 0, NewHTTPError(http.StatusBadRequest, "currency must be ISO code")
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		BrandID:     in.BrandID,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    currency,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		SalePercent: in.SalePercent,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p.ID, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminCreateProductInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := u.validateProductInput(ctx, in); err != nil {
		return err
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:          productID,
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		BrandID:     in.BrandID,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		SalePercent: in.SalePercent,
		UpdatedAt:   time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	//変更前の在庫（before）
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON := fmt.Sprintf(`{"stock":%d}`, p.Stock)
	afterJSON := fmt.Sprintf(`{"stock":%d}`, newStock)

	//在庫の現在値を更新
	if err := u.inventoryRepo.SetStock(ctx, productID, newStock); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//履歴を作成（差分）
	adj := model.InventoryAdjustment{
		ProductID:   productID,
		AdminUserID: adminUserID,
		Delta:       newStock - p.Stock,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   time.Now(),
	}
	if err := u.inventoryRepo.CreateAdjustment(ctx, adj); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログを作成（在庫更新）
	//「誰が」「何を」「どの対象に」「どう変えたか」を残す
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
