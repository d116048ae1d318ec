// Package checkout turns a shopper's cart into a pending order.
package checkout

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/cart"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "card"

// OrderStore persists orders. SubmitOrder is the only write checkout makes.
type OrderStore interface {
	SubmitOrder(ctx context.Context, o domain.Order) (string, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// EventPublisher announces accepted orders. It is optional.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, o domain.Order) error
}

// Carts hands out the live cart of a shopper.
type Carts interface {
	Get(ctx context.Context, userID string) (*cart.Store, error)
}

// Details is the customer-supplied part of an order.
type Details struct {
	PaymentMethod   string
	ShippingAddress domain.Address
	CustomerEmail   string
	CustomerName    string
	CustomerPhone   string
	Notes           string
}

type Service struct {
	carts    Carts
	orders   OrderStore
	events   EventPublisher
	taxRate  decimal.Decimal
	shipping decimal.Decimal
	logger   *log.Logger
}

func New(carts Carts, orders OrderStore, events EventPublisher, taxRate decimal.Decimal, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		carts:    carts,
		orders:   orders,
		events:   events,
		taxRate:  taxRate,
		shipping: decimal.Zero,
		logger:   logger,
	}
}

// Quote computes the order amounts for a cart snapshot.
func (s *Service) Quote(snap cart.Snapshot) (subtotal, tax, shipping, total decimal.Decimal) {
	subtotal = snap.TotalPrice
	tax = subtotal.Mul(s.taxRate).Round(2)
	shipping = s.shipping
	total = subtotal.Add(tax).Add(shipping)
	return subtotal, tax, shipping, total
}

// PlaceOrder submits the current cart of userID as a pending order and clears
// the cart once the order is stored. A failed submission leaves the cart as
// it was. Payment is not collected here.
func (s *Service) PlaceOrder(ctx context.Context, userID string, d Details) (*domain.Order, error) {
	store, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal, tax, shipping, total := s.Quote(snap)
	method := strings.TrimSpace(d.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}
	order := domain.Order{
		UserID:          userID,
		Items:           snap.Items,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Total:           total,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   method,
		ShippingAddress: d.ShippingAddress,
		CustomerEmail:   strings.TrimSpace(d.CustomerEmail),
		CustomerName:    strings.TrimSpace(d.CustomerName),
		CustomerPhone:   strings.TrimSpace(d.CustomerPhone),
		Notes:           strings.TrimSpace(d.Notes),
	}

	id, err := s.orders.SubmitOrder(ctx, order)
	if err != nil {
		s.logger.Printf("checkout: submit user_id=%s error=%v", userID, err)
		return nil, fmt.Errorf("submit order: %w", err)
	}
	order.ID = id

	if s.events != nil {
		// the order is already stored; a lost event is logged, not surfaced
		if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
			s.logger.Printf("checkout: publish order_id=%s error=%v", id, err)
		}
	}

	store.Clear()
	s.logger.Printf("checkout: placed order_id=%s user_id=%s total=%s", id, userID, total.StringFixed(2))
	return &order, nil
}

func (s *Service) Orders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) AllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}
