package model

import (
	"time"

	"gorm.io/gorm"
)

// 金額は全部マイナー単位（セント）の整数で持つ
const DefaultCurrency = "CAD"

// 商品単体セールは SalePercent（nil=なし）。
// カテゴリ側のセールより優先される。
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	BrandID     *int64         `gorm:"index" json:"brand_id,omitempty"`
	CategoryID  *int64         `gorm:"index" json:"category_id,omitempty"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"column:price_cents;not null" json:"price_cents"`
	Currency    string         `gorm:"type:varchar(3);not null;default:'CAD'" json:"currency"`
	Stock       int64          `gorm:"not null;default:0" json:"stock"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	SalePercent *int64         `gorm:"column:sale_percent" json:"sale_percent,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
