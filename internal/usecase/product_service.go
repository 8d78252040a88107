package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
	"github.com/Gunvolt24/shop_backend/pkg/telemetry"
)

// DefaultListingTTL — время жизни снимка полного списка товаров.
const DefaultListingTTL = time.Hour

var _ ports.ProductService = (*ProductService)(nil)

// ProductService — товары: чтение через кэш, запись с инвалидацией после фиксации в хранилище.
type ProductService struct {
	repo       ports.ProductRepository
	listing    ports.ListingCache
	products   ports.ProductCache
	validator  ports.Validator
	log        ports.Logger
	listingTTL time.Duration
}

// NewProductService — DI-конструктор. listingTTL <= 0 заменяется на DefaultListingTTL.
func NewProductService(
	repo ports.ProductRepository,
	listing ports.ListingCache,
	products ports.ProductCache,
	validator ports.Validator,
	log ports.Logger,
	listingTTL time.Duration,
) *ProductService {
	if listingTTL <= 0 {
		listingTTL = DefaultListingTTL
	}
	return &ProductService{
		repo:       repo,
		listing:    listing,
		products:   products,
		validator:  validator,
		log:        log,
		listingTTL: listingTTL,
	}
}

// ListProducts — список товаров. Полный список без фильтров отдаётся из кэша,
// любой фильтр или пагинация идут напрямую в хранилище.
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ProductService.ListProducts")
	defer span.End()

	if err := checkProductFilter(filter); err != nil {
		return nil, err
	}
	if !filter.IsEmpty() {
		return s.listFromStore(ctx, filter)
	}

	if products, ok := s.listFromCache(ctx); ok {
		s.log.Debugf(ctx, "listing served from cache count=%d", len(products))
		return products, nil
	}

	// Версия снимается до чтения хранилища: если между чтением и Set прошла
	// инвалидация, Set не запишет устаревший снимок.
	version, verErr := s.listing.Version(ctx)
	if verErr != nil {
		s.cacheFailure(ctx, "listing.Version", verErr)
	}

	start := time.Now()
	products, err := s.listFromStore(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.log.Infof(ctx, "listing fetched from store count=%d took=%s", len(products), time.Since(start))

	if verErr == nil {
		s.storeListing(ctx, products, version)
	}
	return products, nil
}

// GetProduct — товар по ID: сначала кэш, при промахе хранилище с записью в кэш.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ProductService.GetProduct")
	defer span.End()

	if product, found := s.products.Get(ctx, id); found {
		s.log.Debugf(ctx, "product cache hit id=%s", id)
		return product, nil
	}

	version := s.products.Version(ctx)
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed product_id=%s err=%v", id, err)
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}

	s.products.Set(ctx, product, version)
	return product, nil
}

// CreateProduct — валидация, сохранение, инвалидация списка.
func (s *ProductService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	if err := s.validator.Validate(ctx, product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.log.Errorf(ctx, "repo.Create failed product_id=%s err=%v", product.ID, err)
		return nil, err
	}

	s.invalidate(ctx, product.ID)
	s.log.Infof(ctx, "product created id=%s", product.ID)
	return product, nil
}

// UpdateProduct — полная замена товара.
func (s *ProductService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	if err := s.validator.Validate(ctx, product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		s.log.Errorf(ctx, "repo.Update failed product_id=%s err=%v", product.ID, err)
		return nil, err
	}

	s.invalidate(ctx, product.ID)
	return product, nil
}

// PatchProduct — частичное изменение товара.
func (s *ProductService) PatchProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ProductService.PatchProduct")
	defer span.End()

	if err := s.validator.Validate(ctx, &patch); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}

	updated := patch.Apply(*current)
	if err := s.validator.Validate(ctx, &updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		s.log.Errorf(ctx, "repo.Update failed product_id=%s err=%v", id, err)
		return nil, err
	}

	s.invalidate(ctx, id)
	return &updated, nil
}

// DeleteProduct — удаление товара.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := telemetry.Tracer().Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Errorf(ctx, "repo.Delete failed product_id=%s err=%v", id, err)
		return err
	}

	s.invalidate(ctx, id)
	s.log.Infof(ctx, "product deleted id=%s", id)
	return nil
}

// WarmUpCache — прогрев кэша товаров последними N записями.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *ProductService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	list, err := s.repo.LastN(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.LastN failed n=%d err=%v", n, err)
		return err
	}
	if warmUpErr := s.products.WarmUp(ctx, list); warmUpErr != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", warmUpErr)
	}
	s.log.Infof(ctx, "cache warmed with %d products in %s", len(list), time.Since(start))
	return nil
}

// ------вспомогательные функции------

func (s *ProductService) listFromStore(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Errorf(ctx, "repo.List failed err=%v", err)
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// listFromCache — (список, true) при попадании. Ошибка кэша или битый снимок считаются промахом.
func (s *ProductService) listFromCache(ctx context.Context) ([]domain.Product, bool) {
	data, found, err := s.listing.Get(ctx)
	if err != nil {
		s.cacheFailure(ctx, "listing.Get", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.log.Warnf(ctx, "listing snapshot corrupted, dropping err=%v", err)
		if invErr := s.listing.Invalidate(ctx); invErr != nil {
			s.cacheFailure(ctx, "listing.Invalidate", invErr)
		}
		return nil, false
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, true
}

func (s *ProductService) storeListing(ctx context.Context, products []domain.Product, version uint64) {
	data, err := json.Marshal(products)
	if err != nil {
		s.log.Warnf(ctx, "listing marshal failed err=%v", err)
		return
	}
	stored, err := s.listing.Set(ctx, data, version, s.listingTTL)
	if err != nil {
		s.cacheFailure(ctx, "listing.Set", err)
		return
	}
	if !stored {
		s.log.Infof(ctx, "listing snapshot skipped: invalidated during fetch")
	}
}

// invalidate — сброс кэшей после подтверждённой записи в хранилище.
// Ошибки кэша не влияют на результат операции.
func (s *ProductService) invalidate(ctx context.Context, productID string) {
	if err := s.listing.Invalidate(ctx); err != nil {
		s.cacheFailure(ctx, "listing.Invalidate", err)
	}
	s.products.Delete(ctx, productID)
}

func (s *ProductService) cacheFailure(ctx context.Context, op string, err error) {
	metrics.ListingCacheOps.WithLabelValues("error").Inc()
	s.log.Warnf(ctx, "%s failed: %v", op, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err))
}

func checkProductFilter(f domain.ProductFilter) error {
	if f.Ordering != "" && !domain.ValidProductOrdering(f.Ordering) {
		return fmt.Errorf("%w: unsupported ordering %q", domain.ErrValidation, f.Ordering)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min_price greater than max_price", domain.ErrValidation)
	}
	if f.Limit < 0 || f.Offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", domain.ErrValidation)
	}
	return nil
}
