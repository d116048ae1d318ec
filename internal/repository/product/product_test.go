package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_CreateListGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	original := decimal.RequireFromString("129.99")
	created, err := repo.Create(ctx, domain.Product{
		Key:           "classic-tee",
		Name:          "Classic Tee",
		Price:         decimal.RequireFromString("99.99"),
		OriginalPrice: &original,
		Category:      "men",
		Inventory:     10,
		Sizes:         []string{"S", "M"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Product{Key: "summer-dress", Name: "Summer Dress", Price: decimal.NewFromInt(40), Category: "women"}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
	men, err := repo.List(ctx, "men")
	if err != nil {
		t.Fatalf("List men: %v", err)
	}
	if len(men) != 1 || men[0].ID != created.ID {
		t.Fatalf("unexpected filtered list %+v", men)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("99.99")) || got.OriginalPrice == nil || !got.OriginalPrice.Equal(original) {
		t.Fatalf("prices not preserved: %+v", got)
	}
	if len(got.Sizes) != 2 || len(got.Colors) != 0 {
		t.Fatalf("unexpected variants %+v", got)
	}

	if _, err := repo.Create(ctx, domain.Product{Key: "classic-tee", Name: "dup", Category: "men"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgres_UpsertUpdateDelete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{Key: "p1", Name: "Prod 1", Price: decimal.NewFromInt(1), Category: "kids"})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected ID set")
	}

	again, err := repo.Upsert(ctx, domain.Product{Key: "p1", Name: "Prod 1 updated", Description: "new desc", Price: decimal.NewFromInt(2), Category: "kids"})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if again.ID != p.ID || again.Description != "new desc" || !again.Price.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected upserted product %+v", again)
	}

	again.Inventory = 7
	updated, err := repo.Update(ctx, *again)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Inventory != 7 {
		t.Fatalf("expected inventory 7, got %d", updated.Inventory)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_lines, carts, orders, tokens, products, users, settings RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
