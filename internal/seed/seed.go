// Package seed loads a small demo catalogue for manual testing.
package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// ProductWriter is satisfied by the product service.
type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Key           string
	Name          string
	Description   string
	Price         string
	OriginalPrice string
	Image         string
	Images        []string
	Category      string
	Inventory     int
	Sizes         []string
	Colors        []string
}

var products = []productSeed{
	{
		Key:           "premium-wireless-headphones",
		Name:          "Premium Wireless Headphones",
		Description:   "Active noise cancellation, 30-hour battery life and all-day comfort.",
		Price:         "299.99",
		OriginalPrice: "399.99",
		Image:         "/images/product/product-01.png",
		Images: []string{
			"/images/product/product-01.png",
			"/images/product/product-02.png",
		},
		Category:  "electronics",
		Inventory: 45,
		Colors:    []string{"black", "silver"},
	},
	{
		Key:         "smart-watch-pro",
		Name:        "Smart Watch Pro",
		Description: "Fitness tracking with heart rate monitoring, GPS and 7-day battery life.",
		Price:       "449.99",
		Image:       "/images/product/product-02.png",
		Category:    "wearables",
		Inventory:   32,
		Sizes:       []string{"40mm", "44mm"},
	},
	{
		Key:         "laptop-stand-aluminum",
		Name:        "Laptop Stand Aluminum",
		Description: "Ergonomic aluminum stand with adjustable height.",
		Price:       "79.99",
		Image:       "/images/product/product-03.png",
		Category:    "accessories",
		Inventory:   67,
	},
	{
		Key:           "mechanical-keyboard-rgb",
		Name:          "Mechanical Keyboard RGB",
		Description:   "Mechanical keyboard with customizable RGB lighting.",
		Price:         "159.99",
		OriginalPrice: "199.99",
		Image:         "/images/product/product-04.png",
		Category:      "accessories",
		Inventory:     28,
	},
	{
		Key:         "classic-cotton-tee",
		Name:        "Classic Cotton Tee",
		Description: "Soft cotton tee.",
		Price:       "19.99",
		Image:       "/images/product/product-05.png",
		Category:    "men",
		Inventory:   120,
		Sizes:       []string{"S", "M", "L", "XL"},
		Colors:      []string{"white", "black", "navy"},
	},
	{
		Key:         "linen-summer-dress",
		Name:        "Linen Summer Dress",
		Description: "Lightweight linen dress.",
		Price:       "59.50",
		Image:       "/images/product/product-06.png",
		Category:    "women",
		Inventory:   40,
		Sizes:       []string{"XS", "S", "M", "L"},
		Colors:      []string{"sand", "olive"},
	},
	{
		Key:         "kids-rain-jacket",
		Name:        "Kids Rain Jacket",
		Description: "Waterproof jacket with a hood.",
		Price:       "34.00",
		Image:       "/images/product/product-07.png",
		Category:    "kids",
		Inventory:   25,
		Sizes:       []string{"4Y", "6Y", "8Y"},
		Colors:      []string{"yellow"},
	},
}

// Apply upserts the demo catalogue. It is idempotent: products are keyed.
func Apply(ctx context.Context, w ProductWriter) (int, error) {
	for i, s := range products {
		p, err := s.product()
		if err != nil {
			return i, fmt.Errorf("seed product %s: %w", s.Key, err)
		}
		if _, err := w.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %s: %w", s.Key, err)
		}
	}
	return len(products), nil
}

func (s productSeed) product() (domain.Product, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		Key:         s.Key,
		Name:        s.Name,
		Description: s.Description,
		Price:       price,
		Image:       s.Image,
		Images:      s.Images,
		Category:    s.Category,
		Inventory:   s.Inventory,
		Sizes:       s.Sizes,
		Colors:      s.Colors,
	}
	if s.OriginalPrice != "" {
		orig, err := decimal.NewFromString(s.OriginalPrice)
		if err != nil {
			return domain.Product{}, err
		}
		p.OriginalPrice = &orig
	}
	return p, nil
}
