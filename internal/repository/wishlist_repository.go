package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type WishlistRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error)
	FindByUserID(ctx context.Context, userID int64) (model.Wishlist, error)
}

type WishlistItemRepository interface {
	ListByWishlistID(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error)
	ListProductIDs(ctx context.Context, wishlistID int64) ([]int64, error)
	Exists(ctx context.Context, wishlistID int64, productID int64) (bool, error)
	Create(ctx context.Context, item model.WishlistItem) (model.WishlistItem, error)
	DeleteByWishlistAndProduct(ctx context.Context, wishlistID int64, productID int64) error
}
