package model

import "time"

// カテゴリ全体セール用に SalePercent を持つ（nil=セールなし）
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	ParentID    *int64    `gorm:"index" json:"parent_id,omitempty"`
	SalePercent *int64    `gorm:"column:sale_percent" json:"sale_percent,omitempty"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
