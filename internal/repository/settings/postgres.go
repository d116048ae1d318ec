package settings

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type heroValue struct {
	Images []domain.HeroImage `json:"images"`
}

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

func (r *postgresRepo) HeroImages(ctx context.Context) (*domain.HeroSettings, error) {
	const q = `SELECT value, updated_at FROM settings WHERE key = $1`
	var (
		v   heroValue
		out domain.HeroSettings
	)
	if err := r.pool.QueryRow(ctx, q, HeroImagesKey).Scan(&v, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("settings repo: get key=%s error=%v", HeroImagesKey, err)
		return nil, err
	}
	out.Images = nonNil(v.Images)
	return &out, nil
}

func (r *postgresRepo) SaveHeroImages(ctx context.Context, images []domain.HeroImage) (*domain.HeroSettings, error) {
	const q = `
INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
RETURNING updated_at
`
	out := domain.HeroSettings{Images: nonNil(images)}
	if err := r.pool.QueryRow(ctx, q, HeroImagesKey, heroValue{Images: out.Images}).Scan(&out.UpdatedAt); err != nil {
		r.logger.Printf("settings repo: save key=%s error=%v", HeroImagesKey, err)
		return nil, err
	}
	r.logger.Printf("settings repo: saved key=%s images=%d", HeroImagesKey, len(out.Images))
	return &out, nil
}

func nonNil(images []domain.HeroImage) []domain.HeroImage {
	if images == nil {
		return []domain.HeroImage{}
	}
	return images
}
