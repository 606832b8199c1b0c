// Package pricing は実効価格の解決とカート・注文の合計計算をまとめる。
// 全ての金額はマイナー通貨単位（セント）の整数で扱い、浮動小数は使わない。
package pricing

// 税率13%（HST）。表示用の小数値は TaxRate。
const (
	TaxRatePercent int64 = 13

	// この額以上で送料無料（$100.00）
	FreeShippingThresholdCents int64 = 10000

	// 送料無料にならない場合の送料（$9.99）
	FlatShippingFeeCents int64 = 999
)

// 表示用。金額計算には使わない。
const TaxRate = 0.13

// ActiveSalePercent は有効なセール率を返す。
// 商品側のセール率がカテゴリ側より常に優先される（値の大小は関係ない）。
// nil または 0 は「セールなし」扱い。
func ActiveSalePercent(productPercent *int64, categoryPercent *int64) (int64, bool) {
	if productPercent != nil && *productPercent > 0 {
		return *productPercent, true
	}
	if categoryPercent != nil && *categoryPercent > 0 {
		return *categoryPercent, true
	}
	return 0, false
}

// EffectiveUnitPrice は定価とセール率から実効単価を返す。
// 割引は整数の切り捨て除算（price*percent/100）で求める。
func EffectiveUnitPrice(priceCents int64, productPercent *int64, categoryPercent *int64) int64 {
	percent, ok := ActiveSalePercent(productPercent, categoryPercent)
	if !ok {
		return priceCents
	}
	discount := priceCents * percent / 100
	return priceCents - discount
}

// SalePriceCents は実効単価を返すが、セール中でなければ false。
// 商品APIの sale_price_cents 表示用。
func SalePriceCents(priceCents int64, productPercent *int64, categoryPercent *int64) (int64, bool) {
	percent, ok := ActiveSalePercent(productPercent, categoryPercent)
	if !ok {
		return 0, false
	}
	return priceCents - priceCents*percent/100, true
}

// Line は合計計算の1明細。
type Line struct {
	UnitPriceCents int64 // 実効単価
	ListPriceCents int64 // 定価（節約額表示用）
	Quantity       int64
}

// Summary はカート・注文の合計内訳。
type Summary struct {
	SubtotalCents         int64 `json:"subtotal_cents"`
	OriginalSubtotalCents int64 `json:"original_subtotal_cents"`
	SaleSavingsCents      int64 `json:"sale_savings_cents"`
	TaxCents              int64 `json:"tax_cents"`
	ShippingCents         int64 `json:"shipping_cents"`
	TotalCents            int64 `json:"total_cents"`
	TotalItems            int64 `json:"total_items"`
}

// Totals は明細列から合計内訳を作る。
// tax = subtotal*13/100（切り捨て）、送料は閾値以上で0・未満で定額。
func Totals(lines []Line) Summary {
	var s Summary
	for _, l := range lines {
		s.SubtotalCents += l.UnitPriceCents * l.Quantity
		s.OriginalSubtotalCents += l.ListPriceCents * l.Quantity
		s.TotalItems += l.Quantity
	}

	s.SaleSavingsCents = s.OriginalSubtotalCents - s.SubtotalCents
	s.TaxCents = s.SubtotalCents * TaxRatePercent / 100

	if s.SubtotalCents >= FreeShippingThresholdCents {
		s.ShippingCents = 0
	} else {
		s.ShippingCents = FlatShippingFeeCents
	}

	s.TotalCents = s.SubtotalCents + s.TaxCents + s.ShippingCents
	return s
}
