package model

import "time"

// 注文明細は確定時のスナップショット。作成後は変更しない。
// 商品名・単価は商品が後で編集・削除されても影響を受けない。
type OrderItem struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64     `gorm:"not null;index" json:"order_id"`
	ProductID      int64     `gorm:"not null;index" json:"product_id"`
	TitleSnapshot  string    `gorm:"column:title_snapshot;type:varchar(255);not null" json:"title_snapshot"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	Quantity       int64     `gorm:"not null" json:"quantity"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null" json:"line_total_cents"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
