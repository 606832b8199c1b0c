package model

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusShipped  OrderStatus = "SHIPPED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// 金額内訳は確定時に計算して保存する（後から商品が変わっても動かない）
type Order struct {
	ID                int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64       `gorm:"not null;index" json:"user_id"`
	Status            OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	SubtotalCents     int64       `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	TaxCents          int64       `gorm:"column:tax_cents;not null;default:0" json:"tax_cents"`
	ShippingCents     int64       `gorm:"column:shipping_cents;not null;default:0" json:"shipping_cents"`
	TotalCents        int64       `gorm:"column:total_cents;not null" json:"total_cents"`
	Currency          string      `gorm:"type:varchar(3);not null;default:'CAD'" json:"currency"`
	ShippingAddressID *int64      `gorm:"column:shipping_address_id" json:"shipping_address_id,omitempty"`
	IdempotencyKey    string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	PlacedAt          time.Time   `gorm:"column:placed_at;not null" json:"placed_at"`
	CreatedAt         time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
