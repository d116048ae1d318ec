package product

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo   productrepo.Repository
	logger *log.Logger
}

func New(repo productrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, strings.ToLower(strings.TrimSpace(category)))
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = ""
	if err := normalize(&p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

// Update replaces every editable field of product id with p.
func (s *Service) Update(ctx context.Context, id string, p domain.Product) (*domain.Product, error) {
	p.ID = strings.TrimSpace(id)
	if p.ID == "" {
		return nil, domain.ErrNotFound
	}
	if err := normalize(&p); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, p)
}

// Upsert creates or replaces the product with p.Key. It backs bulk imports.
func (s *Service) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := normalize(&p); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.logger.Printf("product: deleted id=%s", id)
	return nil
}

func normalize(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	p.Key = strings.TrimSpace(p.Key)
	if p.Key == "" {
		p.Key = slug(p.Name)
	}
	switch {
	case p.Name == "":
		return fmt.Errorf("product name required: %w", domain.ErrInvalidInput)
	case p.Key == "":
		return fmt.Errorf("product key required: %w", domain.ErrInvalidInput)
	case p.Category == "":
		return fmt.Errorf("product category required: %w", domain.ErrInvalidInput)
	case p.Price.IsNegative():
		return fmt.Errorf("product price must not be negative: %w", domain.ErrInvalidInput)
	case p.Inventory < 0:
		return fmt.Errorf("product inventory must not be negative: %w", domain.ErrInvalidInput)
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	return nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
