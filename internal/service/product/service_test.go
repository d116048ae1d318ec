package product

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type memoryRepo struct {
	products map[string]domain.Product
	seq      int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]domain.Product)}
}

func (r *memoryRepo) List(_ context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	for _, existing := range r.products {
		if existing.Key == p.Key {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.seq++
	p.ID = fmt.Sprintf("p%d", r.seq)
	r.products[p.ID] = p
	return &p, nil
}

func (r *memoryRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	if _, ok := r.products[p.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	r.products[p.ID] = p
	return &p, nil
}

func (r *memoryRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	for id, existing := range r.products {
		if existing.Key == p.Key {
			p.ID = id
			r.products[id] = p
			return &p, nil
		}
	}
	return r.Create(ctx, p)
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func TestCreate_NormalizesAndDerivesKey(t *testing.T) {
	svc := New(newMemoryRepo(), nil)
	p, err := svc.Create(context.Background(), domain.Product{
		Name:     "  Classic Cotton Tee! ",
		Category: " Men ",
		Price:    decimal.RequireFromString("19.90"),
		Images:   []string{"https://cdn.example.com/a.jpg"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Key != "classic-cotton-tee" || p.Category != "men" || p.Name != "Classic Cotton Tee!" {
		t.Fatalf("unexpected normalization %+v", p)
	}
	if p.Image != "https://cdn.example.com/a.jpg" {
		t.Fatalf("expected first image promoted, got %q", p.Image)
	}
}

func TestCreate_RejectsInvalid(t *testing.T) {
	svc := New(newMemoryRepo(), nil)
	cases := []struct {
		name string
		p    domain.Product
	}{
		{"no name", domain.Product{Category: "men"}},
		{"no category", domain.Product{Name: "Tee"}},
		{"negative price", domain.Product{Name: "Tee", Category: "men", Price: decimal.NewFromInt(-1)}},
		{"negative inventory", domain.Product{Name: "Tee", Category: "men", Inventory: -3}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.p); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestListFiltersByCategory(t *testing.T) {
	svc := New(newMemoryRepo(), nil)
	ctx := context.Background()
	for _, p := range []domain.Product{
		{Name: "Tee", Category: "men"},
		{Name: "Dress", Category: "women"},
		{Name: "Polo", Category: "men"},
	} {
		if _, err := svc.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	men, err := svc.List(ctx, " MEN ")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(men) != 2 {
		t.Fatalf("expected 2 men products, got %d", len(men))
	}
	all, _ := svc.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := New(newMemoryRepo(), nil)
	ctx := context.Background()
	p, err := svc.Create(ctx, domain.Product{Name: "Tee", Category: "men", Price: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, p.ID, domain.Product{Key: p.Key, Name: "Tee v2", Category: "men", Price: decimal.NewFromInt(12)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != p.ID || updated.Name != "Tee v2" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if _, err := svc.Update(ctx, "", *p); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
