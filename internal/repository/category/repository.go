package category

import (
	"context"

	"storefront/internal/domain"
)

// Repository reads the categories currently in use by the catalog.
type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
}
