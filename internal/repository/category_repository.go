package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)
}

type BrandRepository interface {
	FindByID(ctx context.Context, id int64) (model.Brand, error)
}
