package order

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, user_id::text, items, subtotal_cents, tax_cents, shipping_cents, total_cents,
       status, payment_status, payment_method, shipping_address,
       customer_email, customer_name, customer_phone, notes, created_at`

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

func (r *postgresRepo) SubmitOrder(ctx context.Context, o domain.Order) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}

	const q = `
INSERT INTO orders (id, user_id, items, subtotal_cents, tax_cents, shipping_cents, total_cents,
                    status, payment_status, payment_method, shipping_address,
                    customer_email, customer_name, customer_phone, notes)
VALUES ($1, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`
	_, err = r.pool.Exec(ctx, q,
		o.ID,
		o.UserID,
		items,
		domain.ToCents(o.Subtotal),
		domain.ToCents(o.Tax),
		domain.ToCents(o.Shipping),
		domain.ToCents(o.Total),
		o.Status,
		o.PaymentStatus,
		o.PaymentMethod,
		address,
		o.CustomerEmail,
		o.CustomerName,
		o.CustomerPhone,
		o.Notes,
	)
	if err != nil {
		r.logger.Printf("order repo: submit user_id=%s error=%v", o.UserID, err)
		return "", err
	}
	r.logger.Printf("order repo: submitted id=%s user_id=%s lines=%d total=%s", o.ID, o.UserID, len(o.Items), o.Total.StringFixed(2))
	return o.ID, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders
WHERE user_id::text = $1
ORDER BY created_at DESC
`
	return r.list(ctx, q, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
`
	return r.list(ctx, q)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var items, address []byte
	var subtotal, tax, shipping, total int64
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&items,
		&subtotal,
		&tax,
		&shipping,
		&total,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&address,
		&o.CustomerEmail,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.Notes,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items for order %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode address for order %s: %w", o.ID, err)
	}
	o.Subtotal = domain.FromCents(subtotal)
	o.Tax = domain.FromCents(tax)
	o.Shipping = domain.FromCents(shipping)
	o.Total = domain.FromCents(total)
	return &o, nil
}
