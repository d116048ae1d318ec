package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores the line items of each shopper's cart. Save replaces the
// stored lines wholesale, preserving order.
type Repository interface {
	Load(ctx context.Context, userID string) ([]domain.LineItem, error)
	Save(ctx context.Context, userID string, items []domain.LineItem) error
	Delete(ctx context.Context, userID string) error
}
