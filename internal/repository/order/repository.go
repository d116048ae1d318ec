package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// SubmitOrder stores o and returns its id. A missing id is generated.
	SubmitOrder(ctx context.Context, o domain.Order) (string, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}
