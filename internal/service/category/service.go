package category

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository/category"
)

// Service lists the categories the catalog currently uses.
type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}
