package model

import "time"

// プロモコード。
// DiscountPercent は照会結果として返すだけで、合計には反映しない。
type PromoCode struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	DiscountPercent int64     `gorm:"not null" json:"discount_percent"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
