package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/shop_backend/internal/cache/memory"
	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports/mocks"
	"github.com/Gunvolt24/shop_backend/internal/usecase"
	"github.com/Gunvolt24/shop_backend/pkg/validate"
)

type noopLogger struct{}

func (noopLogger) Debugf(context.Context, string, ...any)  {}
func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func newProductService(
	repo *mocks.MockProductRepository,
	listing *memory.ListingCache,
) *usecase.ProductService {
	return usecase.NewProductService(repo, listing, memory.NewProductLRU(100, 0),
		validate.NewValidator(), noopLogger{}, time.Minute)
}

func TestListProducts_MissThenHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := newProductService(repo, memory.NewListingCache())

	p := domain.Product{ID: "P", Name: "Phone", Price: 10, Stock: 5}
	// хранилище читается один раз, второй вызов обслуживает кэш
	repo.EXPECT().List(gomock.Any(), domain.ProductFilter{}).Return([]domain.Product{p}, nil).Times(1)

	for i := 0; i < 2; i++ {
		got, err := svc.ListProducts(context.Background(), domain.ProductFilter{})
		if err != nil || len(got) != 1 || got[0].Stock != 5 {
			t.Fatalf("call %d: unexpected result %+v err=%v", i, got, err)
		}
	}
}

func TestListProducts_FreshAfterUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := newProductService(repo, memory.NewListingCache())
	ctx := context.Background()

	before := domain.Product{ID: "P", Name: "Phone", Price: 10, Stock: 5}
	after := before
	after.Stock = 3

	gomock.InOrder(
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domain.Product{before}, nil),
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil),
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domain.Product{after}, nil),
	)

	if _, err := svc.ListProducts(ctx, domain.ProductFilter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, &after); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.ListProducts(ctx, domain.ProductFilter{})
	if err != nil || got[0].Stock != 3 {
		t.Fatalf("listing must reflect update, got %+v err=%v", got, err)
	}
}

func TestListProducts_FilterBypassesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	listing := mocks.NewMockListingCache(ctrl) // ни одного обращения к кэшу
	svc := usecase.NewProductService(repo, listing, memory.NewProductLRU(10, 0),
		validate.NewValidator(), noopLogger{}, 0)

	filter := domain.ProductFilter{Search: "phone", Limit: 10}
	repo.EXPECT().List(gomock.Any(), filter).Return(nil, nil)

	got, err := svc.ListProducts(context.Background(), filter)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil list, got %#v err=%v", got, err)
	}
}

func TestListProducts_InvalidFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newProductService(mocks.NewMockProductRepository(ctrl), memory.NewListingCache())

	lo, hi := 10.0, 1.0
	cases := []domain.ProductFilter{
		{Ordering: "color"},
		{MinPrice: &lo, MaxPrice: &hi},
		{Limit: -1},
	}
	for _, f := range cases {
		if _, err := svc.ListProducts(context.Background(), f); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("filter %+v: want ErrValidation, got %v", f, err)
		}
	}
}

func TestListProducts_CacheUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	listing := mocks.NewMockListingCache(ctrl)
	svc := usecase.NewProductService(repo, listing, memory.NewProductLRU(10, 0),
		validate.NewValidator(), noopLogger{}, 0)

	down := errors.New("connection refused")
	listing.EXPECT().Get(gomock.Any()).Return(nil, false, down)
	listing.EXPECT().Version(gomock.Any()).Return(uint64(0), down)
	listing.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domain.Product{{ID: "P"}}, nil)

	got, err := svc.ListProducts(context.Background(), domain.ProductFilter{})
	if err != nil || len(got) != 1 {
		t.Fatalf("cache outage must be transparent, got %+v err=%v", got, err)
	}
}

func TestListProducts_CorruptedSnapshotDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	listing := mocks.NewMockListingCache(ctrl)
	svc := usecase.NewProductService(repo, listing, memory.NewProductLRU(10, 0),
		validate.NewValidator(), noopLogger{}, time.Minute)

	gomock.InOrder(
		listing.EXPECT().Get(gomock.Any()).Return([]byte("{not json"), true, nil),
		listing.EXPECT().Invalidate(gomock.Any()).Return(nil),
		listing.EXPECT().Version(gomock.Any()).Return(uint64(1), nil),
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domain.Product{{ID: "P"}}, nil),
		listing.EXPECT().Set(gomock.Any(), gomock.Any(), uint64(1), time.Minute).Return(true, nil),
	)

	if got, err := svc.ListProducts(context.Background(), domain.ProductFilter{}); err != nil || len(got) != 1 {
		t.Fatalf("unexpected result %+v err=%v", got, err)
	}
}

func TestListProducts_StaleFetchNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	listing := memory.NewListingCache()
	svc := newProductService(repo, listing)
	ctx := context.Background()

	stale := domain.Product{ID: "P", Name: "Phone", Price: 10, Stock: 5}
	fresh := stale
	fresh.Stock = 3

	gomock.InOrder(
		// пока список читается, параллельная запись фиксируется и инвалидирует кэш
		repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
				_ = listing.Invalidate(ctx)
				return []domain.Product{stale}, nil
			}),
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domain.Product{fresh}, nil),
	)

	if _, err := svc.ListProducts(ctx, domain.ProductFilter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, found, _ := listing.Get(ctx); found {
		t.Fatalf("stale snapshot must not be cached")
	}

	got, err := svc.ListProducts(ctx, domain.ProductFilter{})
	if err != nil || got[0].Stock != 3 {
		t.Fatalf("second read must hit store, got %+v err=%v", got, err)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := newProductService(repo, memory.NewListingCache())

	repo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, nil)

	if _, err := svc.GetProduct(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGetProduct_CachedAfterFirstRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := newProductService(repo, memory.NewListingCache())

	repo.EXPECT().GetByID(gomock.Any(), "P").Return(&domain.Product{ID: "P", Name: "Phone"}, nil).Times(1)

	for i := 0; i < 2; i++ {
		if p, err := svc.GetProduct(context.Background(), "P"); err != nil || p.ID != "P" {
			t.Fatalf("call %d: unexpected %+v err=%v", i, p, err)
		}
	}
}

func TestCreateProduct_ValidationStopsWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := newProductService(repo, memory.NewListingCache())

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.CreateProduct(context.Background(), &domain.Product{Name: "Bad", Price: -1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestCreateProduct_InvalidatesListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	listing := memory.NewListingCache()
	svc := newProductService(repo, listing)
	ctx := context.Background()

	v, _ := listing.Version(ctx)
	_, _ = listing.Set(ctx, []byte(`[]`), v, time.Minute)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	p, err := svc.CreateProduct(ctx, &domain.Product{Name: "Phone", Price: 10, Stock: 5})
	if err != nil || p.ID == "" {
		t.Fatalf("unexpected %+v err=%v", p, err)
	}
	if _, found, _ := listing.Get(ctx); found {
		t.Fatalf("listing must be invalidated after create")
	}
}

func TestCreateProduct_StoreFailureKeepsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	listing := mocks.NewMockListingCache(ctrl)
	svc := usecase.NewProductService(repo, listing, memory.NewProductLRU(10, 0),
		validate.NewValidator(), noopLogger{}, 0)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
	listing.EXPECT().Invalidate(gomock.Any()).Times(0)

	if _, err := svc.CreateProduct(context.Background(), &domain.Product{Name: "Phone"}); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestPatchProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := newProductService(repo, memory.NewListingCache())

	stock := 3
	repo.EXPECT().GetByID(gomock.Any(), "P").Return(&domain.Product{ID: "P", Name: "Phone", Price: 10, Stock: 5}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *domain.Product) error {
		if p.Stock != 3 || p.Name != "Phone" {
			t.Fatalf("unexpected patched product %+v", p)
		}
		return nil
	})

	got, err := svc.PatchProduct(context.Background(), "P", domain.ProductPatch{Stock: &stock})
	if err != nil || got.Stock != 3 {
		t.Fatalf("unexpected %+v err=%v", got, err)
	}
}

func TestDeleteProduct_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := newProductService(repo, memory.NewListingCache())

	repo.EXPECT().Delete(gomock.Any(), "P").Return(domain.ErrNotFound)

	if err := svc.DeleteProduct(context.Background(), "P"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestWarmUpCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	products := mocks.NewMockProductCache(ctrl)
	svc := usecase.NewProductService(repo, memory.NewListingCache(), products,
		validate.NewValidator(), noopLogger{}, 0)

	list := []*domain.Product{{ID: "A"}, {ID: "B"}}
	repo.EXPECT().LastN(gomock.Any(), 2).Return(list, nil)
	products.EXPECT().WarmUp(gomock.Any(), list).Return(nil)

	if err := svc.WarmUpCache(context.Background(), 2); err != nil {
		t.Fatalf("warm up: %v", err)
	}
	if err := svc.WarmUpCache(context.Background(), 0); err != nil {
		t.Fatalf("n=0 must be a no-op, got %v", err)
	}
}
