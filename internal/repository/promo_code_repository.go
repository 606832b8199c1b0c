package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// プロモコードの照会だけを約束。
// 照合は正規化済み（trim + 大文字化）のコードで行う。
type PromoCodeRepository interface {
	FindActiveByCode(ctx context.Context, code string) (model.PromoCode, error)
}
