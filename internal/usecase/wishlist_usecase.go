package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// WishlistUsecase は /wishlist の業務ロジックです。
// ウィッシュリストはユーザーごとに1つ（無ければ作る）。
type WishlistUsecase struct {
	wishlistRepo     repo.WishlistRepository
	wishlistItemRepo repo.WishlistItemRepository
	productRepo      repo.ProductRepository
	categoryRepo     repo.CategoryRepository
}

func NewWishlistUsecase(
	wishlistRepo repo.WishlistRepository,
	wishlistItemRepo repo.WishlistItemRepository,
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
) *WishlistUsecase {
	return &WishlistUsecase{
		wishlistRepo:     wishlistRepo,
		wishlistItemRepo: wishlistItemRepo,
		productRepo:      productRepo,
		categoryRepo:     categoryRepo,
	}
}

// 商品情報はセール込みの現在価格で返す（スナップショットは持たない）。
type WishlistItemResponse struct {
	ID      int64         `json:"id"`
	AddedAt time.Time     `json:"added_at"`
	Product ProductOutput `json:"product"`
}

type WishlistResponse struct {
	Items []WishlistItemResponse `json:"items"`
	Count int                    `json:"count"`
}

type WishlistToggleResponse struct {
	ProductID int64 `json:"product_id"`
	InList    bool  `json:"in_list"`
}

// GetWishlist は一覧取得（無ければ作って空を返す）。
// 非公開になった商品は出さない。
func (u *WishlistUsecase) GetWishlist(ctx context.Context, userID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	wl, err := u.wishlistRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.wishlistItemRepo.ListByWishlistID(ctx, wl.ID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]WishlistItemResponse, 0, len(items))
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		var cp *int64
		if p.CategoryID != nil {
			c, err := u.categoryRepo.FindByID(ctx, *p.CategoryID)
			if err == nil {
				cp = c.SalePercent
			}
		}
		respItems = append(respItems, WishlistItemResponse{
			ID:      it.ID,
			AddedAt: it.AddedAt,
			Product: toProductOutput(p, cp),
		})
	}

	return WishlistResponse{Items: respItems, Count: len(respItems)}, nil
}

// GetWishlistIDs はフロントのハートマーク描画用（IDだけ軽く返す）。
func (u *WishlistUsecase) GetWishlistIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	wl, err := u.wishlistRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return []int64{}, nil
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ids, err := u.wishlistItemRepo.ListProductIDs(ctx, wl.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ids, nil
}

// AddToWishlist は追加。すでに入っていても冪等（エラーにしない）。
func (u *WishlistUsecase) AddToWishlist(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}

	wl, err := u.wishlistRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	exists, err := u.wishlistItemRepo.Exists(ctx, wl.ID, productID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return nil
	}

	if _, err := u.wishlistItemRepo.Create(ctx, model.WishlistItem{
		WishlistID: wl.ID,
		ProductID:  productID,
		AddedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// RemoveFromWishlist は削除。入っていなければ404。
func (u *WishlistUsecase) RemoveFromWishlist(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	wl, err := u.wishlistRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.wishlistItemRepo.DeleteByWishlistAndProduct(ctx, wl.ID, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// ToggleWishlist は入っていれば外し、無ければ入れる。
func (u *WishlistUsecase) ToggleWishlist(ctx context.Context, userID int64, productID int64) (WishlistToggleResponse, error) {
	if userID <= 0 {
		return WishlistToggleResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistToggleResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	wl, err := u.wishlistRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return WishlistToggleResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	exists, err := u.wishlistItemRepo.Exists(ctx, wl.ID, productID)
	if err != nil {
		return WishlistToggleResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if exists {
		if err := u.wishlistItemRepo.DeleteByWishlistAndProduct(ctx, wl.ID, productID); err != nil && err != repo.ErrNotFound {
			return WishlistToggleResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return WishlistToggleResponse{ProductID: productID, InList: false}, nil
	}

	//追加側は商品の公開チェックをする
	if err := u.AddToWishlist(ctx, userID, productID); err != nil {
		return WishlistToggleResponse{}, err
	}
	return WishlistToggleResponse{ProductID: productID, InList: true}, nil
}

// IsInWishlist は1商品の在否チェック。
func (u *WishlistUsecase) IsInWishlist(ctx context.Context, userID int64, productID int64) (bool, error) {
	if userID <= 0 {
		return false, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return false, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	wl, err := u.wishlistRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	exists, err := u.wishlistItemRepo.Exists(ctx, wl.ID, productID)
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return exists, nil
}
