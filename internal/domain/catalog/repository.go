package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Product], error)
	FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[Product], error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}
