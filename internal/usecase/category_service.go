package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
)

var _ ports.CategoryService = (*CategoryService)(nil)

// CategoryService — CRUD категорий.
// Удаление категории обнуляет ссылку у товаров, поэтому сбрасывает кэши товаров.
type CategoryService struct {
	repo      ports.CategoryRepository
	listing   ports.ListingCache
	products  ports.ProductCache
	validator ports.Validator
	log       ports.Logger
}

func NewCategoryService(
	repo ports.CategoryRepository,
	listing ports.ListingCache,
	products ports.ProductCache,
	validator ports.Validator,
	log ports.Logger,
) *CategoryService {
	return &CategoryService{
		repo:      repo,
		listing:   listing,
		products:  products,
		validator: validator,
		log:       log,
	}
}

func (s *CategoryService) ListCategories(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	list, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.log.Errorf(ctx, "repo.List categories failed err=%v", err)
		return nil, err
	}
	if list == nil {
		list = []domain.Category{}
	}
	return list, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category %s", domain.ErrNotFound, id)
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.validator.Validate(ctx, category); err != nil {
		return nil, err
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, category); err != nil {
		s.log.Errorf(ctx, "repo.Create category failed err=%v", err)
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.validator.Validate(ctx, category); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) PatchCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	if err := s.validator.Validate(ctx, &patch); err != nil {
		return nil, err
	}
	current, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*current)
	if err := s.validator.Validate(ctx, &updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	detached, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if detached > 0 {
		if invErr := s.listing.Invalidate(ctx); invErr != nil {
			metrics.ListingCacheOps.WithLabelValues("error").Inc()
			s.log.Warnf(ctx, "listing.Invalidate failed: %v", fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, invErr))
		}
		s.products.Purge(ctx)
	}
	s.log.Infof(ctx, "category deleted id=%s detached_products=%d", id, detached)
	return nil
}
