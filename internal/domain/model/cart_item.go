package model

import "time"

// カートの明細。
// UnitPriceCents は追加・数量変更のたびに現在の実効価格へ更新される。
// チェックアウト前のカートはスナップショット安定ではない（注文明細が確定版）。
type CartItem struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID         int64     `gorm:"not null;index" json:"cart_id"`
	ProductID      int64     `gorm:"not null;index" json:"product_id"`
	Quantity       int64     `gorm:"not null" json:"quantity"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	AddedAt        time.Time `gorm:"column:added_at;not null;autoCreateTime" json:"added_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
