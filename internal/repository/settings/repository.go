package settings

import (
	"context"

	"storefront/internal/domain"
)

// HeroImagesKey is the settings row holding the hero carousel.
const HeroImagesKey = "hero-images"

// Repository stores site-wide settings documents as jsonb rows.
type Repository interface {
	// HeroImages returns domain.ErrNotFound until the carousel is first saved.
	HeroImages(ctx context.Context) (*domain.HeroSettings, error)
	SaveHeroImages(ctx context.Context, images []domain.HeroImage) (*domain.HeroSettings, error)
}
