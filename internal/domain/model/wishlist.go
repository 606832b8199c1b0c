package model

import "time"

// 1ユーザーにつき1つ
type Wishlist struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

type WishlistItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WishlistID int64     `gorm:"not null;index:idx_wishlist_product,unique" json:"wishlist_id"`
	ProductID  int64     `gorm:"not null;index:idx_wishlist_product,unique" json:"product_id"`
	AddedAt    time.Time `gorm:"column:added_at;not null;autoCreateTime" json:"added_at"`
}
