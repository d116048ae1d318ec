package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, key, name, COALESCE(description, ''), price_cents, original_price_cents,
       image, images, category, inventory, sizes, colors, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR category = $1)
ORDER BY created_at DESC, key ASC
`
	rows, err := r.pool.Query(ctx, q, category)
	if err != nil {
		r.logger.Printf("product repo: list category=%q error=%v", category, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows category=%q error=%v", category, err)
		return nil, err
	}
	r.logger.Printf("product repo: list category=%q count=%d", category, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products
WHERE id::text = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get id=%s not found", id)
		} else {
			r.logger.Printf("product repo: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (id, key, name, description, price_cents, original_price_cents, image, images, category, inventory, sizes, colors)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + productColumns
	created, err := scanProduct(r.pool.QueryRow(ctx, q, productArgs(p)...))
	if err != nil {
		r.logger.Printf("product repo: create key=%s error=%v", p.Key, err)
		return nil, err
	}
	r.logger.Printf("product repo: created key=%s id=%s", created.Key, created.ID)
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
UPDATE products SET
    key = $2,
    name = $3,
    description = NULLIF($4, ''),
    price_cents = $5,
    original_price_cents = $6,
    image = $7,
    images = $8,
    category = $9,
    inventory = $10,
    sizes = $11,
    colors = $12
WHERE id::text = $1
RETURNING ` + productColumns
	updated, err := scanProduct(r.pool.QueryRow(ctx, q, productArgs(p)...))
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s key=%s", updated.ID, updated.Key)
	return updated, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (id, key, name, description, price_cents, original_price_cents, image, images, category, inventory, sizes, colors)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    original_price_cents = EXCLUDED.original_price_cents,
    image = EXCLUDED.image,
    images = EXCLUDED.images,
    category = EXCLUDED.category,
    inventory = EXCLUDED.inventory,
    sizes = EXCLUDED.sizes,
    colors = EXCLUDED.colors
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q, productArgs(p)...))
	if err != nil {
		r.logger.Printf("product repo: upsert key=%s error=%v", p.Key, err)
		return nil, err
	}
	if p.ID != "" && res.ID != p.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s existing_id=%s import_id=%s", p.Key, res.ID, p.ID)
	}
	r.logger.Printf("product repo: upserted key=%s id=%s", res.Key, res.ID)
	return res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id::text = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

func productArgs(p domain.Product) []any {
	var original *int64
	if p.OriginalPrice != nil {
		cents := domain.ToCents(*p.OriginalPrice)
		original = &cents
	}
	return []any{
		p.ID,
		p.Key,
		p.Name,
		p.Description,
		domain.ToCents(p.Price),
		original,
		p.Image,
		nonNil(p.Images),
		p.Category,
		p.Inventory,
		nonNil(p.Sizes),
		nonNil(p.Colors),
	}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var priceCents int64
	var originalCents *int64
	err := row.Scan(
		&p.ID,
		&p.Key,
		&p.Name,
		&p.Description,
		&priceCents,
		&originalCents,
		&p.Image,
		&p.Images,
		&p.Category,
		&p.Inventory,
		&p.Sizes,
		&p.Colors,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	p.Price = domain.FromCents(priceCents)
	if originalCents != nil {
		original := domain.FromCents(*originalCents)
		p.OriginalPrice = &original
	}
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
