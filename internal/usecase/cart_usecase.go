package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// RepositoryはCart と CartItem を分離して受け取ります。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	promoRepo    repo.PromoCodeRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	promoRepo repo.PromoCodeRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		promoRepo:    promoRepo,
	}
}

// unit_price_cents はカートに入れた時点の実効価格。
// list_price_cents（定価）との差が節約額になる。
type CartItemResponse struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	ListPriceCents int64  `json:"list_price_cents"`
	Quantity       int64  `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	pricing.Summary
	TaxRate  float64 `json:"tax_rate"`
	Currency string  `json:"currency"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// プロモコードの照会結果。合計金額には反映しない（照会のみ）。
type PromoResponse struct {
	Code            string `json:"code"`
	DiscountPercent int64  `json:"discount_percent"`
	Valid           bool   `json:"valid"`
}

// 商品の現在の実効単価（カテゴリセール込み）
func (u *CartUsecase) effectiveUnitPrice(ctx context.Context, p model.Product) int64 {
	var cp *int64
	if p.CategoryID != nil {
		c, err := u.categoryRepo.FindByID(ctx, *p.CategoryID)
		if err == nil {
			cp = c.SalePercent
		}
	}
	return pricing.EffectiveUnitPrice(p.PriceCents, p.SalePercent, cp)
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// GetCartCount はヘッダーバッジ用の数量合計（カート無しは0）。
func (u *CartUsecase) GetCartCount(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var count int64 = 0
	for _, it := range items {
		count += it.Quantity
	}
	return count, nil
}

// AddToCart はカートに追加（同一商品は数量加算、単価は現在価格で上書き）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// ACTIVEカート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	// 既存数量を ListByCartID で調べる
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID == in.ProductID {
			existingQty = it.Quantity
			break
		}
	}

	newQty := existingQty + in.Quantity
	if newQty > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("insufficient stock: only %d available", p.Stock))
	}

	// Upsert（同一商品は加算）
	// unit_price_cents は「今の実効価格」で上書きする
	unitPrice := u.effectiveUnitPrice(ctx, p)
	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity, unitPrice); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 数量変更（所有チェック＋在庫チェック＋価格リフレッシュ）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//商品の在庫チェック
	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("insufficient stock: only %d available", p.Stock))
	}

	unitPrice := u.effectiveUnitPrice(ctx, p)
	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity, unitPrice); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//ACTIVEカートを取得して返却
	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// ApplyPromo はコードの有効性を照会する。
// 合計には反映しない（決済導線が無いため、適用はフロント表示のみ）。
func (u *CartUsecase) ApplyPromo(ctx context.Context, userID int64, code string) (PromoResponse, error) {
	if userID <= 0 {
		return PromoResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return PromoResponse{}, NewHTTPError(http.StatusBadRequest, "code required")
	}

	promo, err := u.promoRepo.FindActiveByCode(ctx, normalized)
	if err == repo.ErrNotFound {
		return PromoResponse{}, NewHTTPError(http.StatusNotFound, "invalid promo code")
	}
	if err != nil {
		return PromoResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PromoResponse{
		Code:            promo.Code,
		DiscountPercent: promo.DiscountPercent,
		Valid:           true,
	}, nil
}

// cartIDの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	lines := make([]pricing.Line, 0, len(items))
	currency := model.DefaultCurrency

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}
		currency = p.Currency

		respItems = append(respItems, CartItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Title:          p.Title,
			Slug:           p.Slug,
			UnitPriceCents: it.UnitPriceCents,
			ListPriceCents: p.PriceCents,
			Quantity:       it.Quantity,
			LineTotalCents: it.UnitPriceCents * it.Quantity,
		})
		lines = append(lines, pricing.Line{
			UnitPriceCents: it.UnitPriceCents,
			ListPriceCents: p.PriceCents,
			Quantity:       it.Quantity,
		})
	}

	return CartResponse{
		Items:    respItems,
		Summary:  pricing.Totals(lines),
		TaxRate:  pricing.TaxRate,
		Currency: currency,
	}, nil
}
