package cart

import (
	"context"
	"io"
	"log"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) Load(ctx context.Context, userID string) ([]domain.LineItem, error) {
	const q = `
SELECT l.product_id, l.name, l.image, l.price_cents, l.quantity, l.size, l.color
FROM cart_lines l
JOIN carts c ON c.id = l.cart_id
WHERE c.user_id::text = $1
ORDER BY l.position ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("cart repo: load user_id=%s error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		var priceCents int64
		if err := rows.Scan(&item.ID, &item.Name, &item.Image, &priceCents, &item.Quantity, &item.Size, &item.Color); err != nil {
			return nil, err
		}
		item.Price = domain.FromCents(priceCents)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("cart repo: load user_id=%s lines=%d", userID, len(items))
	return items, nil
}

func (r *postgresRepo) Save(ctx context.Context, userID string, items []domain.LineItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var cartID string
	err = tx.QueryRow(ctx, `
INSERT INTO carts (user_id)
VALUES ($1::uuid)
ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
RETURNING id::text
`, userID).Scan(&cartID)
	if err != nil {
		r.logger.Printf("cart repo: save user_id=%s error=%v", userID, err)
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}

	if len(items) > 0 {
		batch := &pgx.Batch{}
		for i, item := range items {
			batch.Queue(`
INSERT INTO cart_lines (cart_id, position, product_id, name, image, price_cents, quantity, size, color)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, cartID, i, item.ID, item.Name, item.Image, domain.ToCents(item.Price), item.Quantity, item.Size, item.Color)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			r.logger.Printf("cart repo: save lines user_id=%s error=%v", userID, err)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("cart repo: saved user_id=%s lines=%d", userID, len(items))
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id::text = $1`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
