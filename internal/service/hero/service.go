// Package hero manages the storefront hero carousel.
package hero

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/service/media"
)

// MaxImages caps the carousel length.
const MaxImages = 20

// Store persists the carousel. The settings repository satisfies it.
type Store interface {
	HeroImages(ctx context.Context) (*domain.HeroSettings, error)
	SaveHeroImages(ctx context.Context, images []domain.HeroImage) (*domain.HeroSettings, error)
}

// Media uploads and removes carousel images. *media.Service satisfies it.
type Media interface {
	Upload(ctx context.Context, r io.Reader, filename string, size int64) (*media.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// File is one uploaded image.
type File struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

type Service struct {
	// mu serialises read-modify-write cycles on the settings row.
	mu     sync.Mutex
	store  Store
	media  Media
	logger *log.Logger
}

func New(store Store, m Media, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{store: store, media: m, logger: logger}
}

// List returns the carousel, empty when it was never saved.
func (s *Service) List(ctx context.Context) (*domain.HeroSettings, error) {
	out, err := s.store.HeroImages(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.HeroSettings{Images: []domain.HeroImage{}}, nil
	}
	return out, err
}

// Add uploads files and appends them to the carousel in order. Nothing is
// saved when an upload fails; images already uploaded in the call are
// removed again.
func (s *Service) Add(ctx context.Context, files []File) (*domain.HeroSettings, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one image required: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(current.Images)+len(files) > MaxImages {
		return nil, fmt.Errorf("carousel holds at most %d images: %w", MaxImages, domain.ErrInvalidInput)
	}

	added := make([]domain.HeroImage, 0, len(files))
	for _, f := range files {
		img, err := s.media.Upload(ctx, f.Reader, f.Filename, f.Size)
		if err != nil {
			s.discard(ctx, added)
			return nil, err
		}
		added = append(added, domain.HeroImage{URL: img.URL, PublicID: img.PublicID})
	}

	images := append(append([]domain.HeroImage{}, current.Images...), added...)
	out, err := s.store.SaveHeroImages(ctx, images)
	if err != nil {
		s.discard(ctx, added)
		return nil, fmt.Errorf("save hero images: %w", err)
	}
	s.logger.Printf("hero: added count=%d total=%d", len(added), len(out.Images))
	return out, nil
}

// Replace stores images as the whole carousel, which also covers reordering.
// CDN images dropped from the list are deleted.
func (s *Service) Replace(ctx context.Context, images []domain.HeroImage) (*domain.HeroSettings, error) {
	if len(images) > MaxImages {
		return nil, fmt.Errorf("carousel holds at most %d images: %w", MaxImages, domain.ErrInvalidInput)
	}
	cleaned := make([]domain.HeroImage, 0, len(images))
	for _, img := range images {
		img.URL = strings.TrimSpace(img.URL)
		img.PublicID = strings.TrimSpace(img.PublicID)
		if img.URL == "" {
			return nil, fmt.Errorf("image url required: %w", domain.ErrInvalidInput)
		}
		cleaned = append(cleaned, img)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.store.SaveHeroImages(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("save hero images: %w", err)
	}
	s.discard(ctx, dropped(current.Images, cleaned))
	s.logger.Printf("hero: replaced total=%d", len(out.Images))
	return out, nil
}

// Remove deletes the image at index and returns the remaining carousel.
func (s *Service) Remove(ctx context.Context, index int) (*domain.HeroSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(current.Images) {
		return nil, fmt.Errorf("hero image %d: %w", index, domain.ErrNotFound)
	}
	removed := current.Images[index]
	images := make([]domain.HeroImage, 0, len(current.Images)-1)
	images = append(images, current.Images[:index]...)
	images = append(images, current.Images[index+1:]...)

	out, err := s.store.SaveHeroImages(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("save hero images: %w", err)
	}
	s.discard(ctx, []domain.HeroImage{removed})
	s.logger.Printf("hero: removed index=%d total=%d", index, len(out.Images))
	return out, nil
}

// discard deletes CDN copies. Failures are logged; the carousel is the
// source of truth.
func (s *Service) discard(ctx context.Context, images []domain.HeroImage) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := s.media.Delete(ctx, img.PublicID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("hero: delete public_id=%s error=%v", img.PublicID, err)
		}
	}
}

func dropped(before, after []domain.HeroImage) []domain.HeroImage {
	kept := make(map[string]bool, len(after))
	for _, img := range after {
		kept[img.PublicID] = true
	}
	var out []domain.HeroImage
	for _, img := range before {
		if img.PublicID != "" && !kept[img.PublicID] {
			out = append(out, img)
		}
	}
	return out
}
