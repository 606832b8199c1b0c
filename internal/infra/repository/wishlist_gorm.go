package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// WishlistRepositoryとWishlistItemRepositoryをまとめて実装する
type WishlistGormRepository struct {
	db *gorm.DB
}

// DI
func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

// ユーザーのウィッシュリストを取得し、無ければ作成
func (r *WishlistGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	var wl model.Wishlist

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("user_id = ?", userID).First(&wl).Error
		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		newWl := model.Wishlist{
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&newWl).Error; err != nil {
			// user_idのunique制約に負けた場合は取り直す
			retryErr := tx.Where("user_id = ?", userID).First(&wl).Error
			if retryErr == nil {
				return nil
			}
			return err
		}

		wl = newWl
		return nil
	})

	if err != nil {
		return model.Wishlist{}, err
	}
	return wl, nil
}

func (r *WishlistGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	var wl model.Wishlist

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Wishlist{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Wishlist{}, err
	}
	return wl, nil
}

// 明細を追加順で一覧取得
func (r *WishlistGormRepository) ListByWishlistID(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error) {
	var items []model.WishlistItem

	if err := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Order("added_at asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.WishlistItem{}, err
	}
	return items, nil
}

// product_idだけの一覧（画面側の「ハート表示」チェック用）
func (r *WishlistGormRepository) ListProductIDs(ctx context.Context, wishlistID int64) ([]int64, error) {
	var ids []int64

	if err := r.db.WithContext(ctx).
		Model(&model.WishlistItem{}).
		Where("wishlist_id = ?", wishlistID).
		Order("id asc").
		Pluck("product_id", &ids).Error; err != nil {
		return []int64{}, err
	}
	return ids, nil
}

func (r *WishlistGormRepository) Exists(ctx context.Context, wishlistID int64, productID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *WishlistGormRepository) Create(ctx context.Context, item model.WishlistItem) (model.WishlistItem, error) {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.WishlistItem{}, err
	}
	return item, nil
}

func (r *WishlistGormRepository) DeleteByWishlistAndProduct(ctx context.Context, wishlistID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
