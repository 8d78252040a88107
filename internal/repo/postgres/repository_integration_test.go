//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	pgrepo "github.com/Gunvolt24/shop_backend/internal/repo/postgres"
	"github.com/Gunvolt24/shop_backend/internal/testutil"
)

// startPG — контейнер Postgres с миграциями; останавливается по завершении теста.
func startPG(t *testing.T) *testutil.PGContainer {
	t.Helper()

	// длинный контекст — только на подъём контейнера
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })
	return pg
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestProductRepo_CRUDAndFilters_TC(t *testing.T) {
	t.Parallel()
	pg := startPG(t)
	ctx := testCtx(t)

	categories := pgrepo.NewCategoryRepository(pg.Pool)
	products := pgrepo.NewProductRepository(pg.Pool)

	cat := &domain.Category{ID: "cat-" + testutil.UniqSuffix(), Name: "Phones"}
	require.NoError(t, categories.Create(ctx, cat))

	cheap := testutil.MakeProduct(testutil.WithPrice(5), testutil.WithCategory(cat.ID))
	pricey := testutil.MakeProduct(testutil.WithPrice(99.99), testutil.WithStock(0))
	pricey.Name = "Super phone"
	require.NoError(t, products.Create(ctx, &cheap))
	require.NoError(t, products.Create(ctx, &pricey))
	require.False(t, cheap.CreatedAt.IsZero())

	got, err := products.GetByID(ctx, pricey.ID)
	require.NoError(t, err)
	require.InDelta(t, 99.99, got.Price, 1e-9)

	missing, err := products.GetByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	all, err := products.List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	inStock := true
	list, err := products.List(ctx, domain.ProductFilter{InStock: &inStock})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, cheap.ID, list[0].ID)

	list, err = products.List(ctx, domain.ProductFilter{CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = products.List(ctx, domain.ProductFilter{Search: "super"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, pricey.ID, list[0].ID)

	list, err = products.List(ctx, domain.ProductFilter{Ordering: "-price", Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, pricey.ID, list[0].ID)

	cheap.Stock = 3
	require.NoError(t, products.Update(ctx, &cheap))
	got, err = products.GetByID(ctx, cheap.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.Stock)

	ghost := testutil.MakeProduct()
	require.ErrorIs(t, products.Update(ctx, &ghost), domain.ErrNotFound)

	bad := testutil.MakeProduct(testutil.WithCategory("no-such-category"))
	require.ErrorIs(t, products.Create(ctx, &bad), domain.ErrValidation)

	require.NoError(t, products.Delete(ctx, pricey.ID))
	require.ErrorIs(t, products.Delete(ctx, pricey.ID), domain.ErrNotFound)

	last, err := products.LastN(ctx, 10)
	require.NoError(t, err)
	require.Len(t, last, 1)
}

func TestCategoryRepo_DeleteDetachesProducts_TC(t *testing.T) {
	t.Parallel()
	pg := startPG(t)
	ctx := testCtx(t)

	categories := pgrepo.NewCategoryRepository(pg.Pool)
	products := pgrepo.NewProductRepository(pg.Pool)

	cat := &domain.Category{ID: "cat-" + testutil.UniqSuffix(), Name: "Phones"}
	require.NoError(t, categories.Create(ctx, cat))
	p := testutil.MakeProduct(testutil.WithCategory(cat.ID))
	require.NoError(t, products.Create(ctx, &p))

	detached, err := categories.Delete(ctx, cat.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, detached)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Nil(t, got.CategoryID)

	_, err = categories.Delete(ctx, cat.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, err := categories.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestOrderRepo_CreateReservesStock_TC(t *testing.T) {
	t.Parallel()
	pg := startPG(t)
	ctx := testCtx(t)

	products := pgrepo.NewProductRepository(pg.Pool)
	orders := pgrepo.NewOrderRepository(pg.Pool)

	user := testutil.MakeUser(domain.RoleCustomer)
	require.NoError(t, testutil.InsertUser(ctx, pg.Pool, user))

	p := testutil.MakeProduct(testutil.WithPrice(10), testutil.WithStock(5))
	require.NoError(t, products.Create(ctx, &p))

	order := &domain.Order{
		ID: "ord-" + testutil.UniqSuffix(), UserID: user.ID, Status: domain.StatusPending,
		Items: []domain.OrderItem{{ProductID: p.ID, Quantity: 2}},
	}
	require.NoError(t, orders.Create(ctx, order))
	require.InDelta(t, 20, order.TotalPrice, 1e-9)
	require.InDelta(t, 10, order.Items[0].Price, 1e-9)

	stock, err := testutil.StockOf(ctx, pg.Pool, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stock)

	tooMuch := &domain.Order{
		ID: "ord-" + testutil.UniqSuffix(), UserID: user.ID, Status: domain.StatusPending,
		Items: []domain.OrderItem{{ProductID: p.ID, Quantity: 4}},
	}
	require.ErrorIs(t, orders.Create(ctx, tooMuch), domain.ErrInsufficientStock)

	unknown := &domain.Order{
		ID: "ord-" + testutil.UniqSuffix(), UserID: user.ID, Status: domain.StatusPending,
		Items: []domain.OrderItem{{ProductID: "nope", Quantity: 1}},
	}
	require.ErrorIs(t, orders.Create(ctx, unknown), domain.ErrNotFound)

	// неудачные заказы не трогают остатки
	stock, err = testutil.StockOf(ctx, pg.Pool, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stock)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, domain.StatusPending, got.Status)
}

func TestOrderRepo_ConcurrentOrdersNeverOversell_TC(t *testing.T) {
	t.Parallel()
	pg := startPG(t)
	ctx := testCtx(t)

	products := pgrepo.NewProductRepository(pg.Pool)
	orders := pgrepo.NewOrderRepository(pg.Pool)

	user := testutil.MakeUser(domain.RoleCustomer)
	require.NoError(t, testutil.InsertUser(ctx, pg.Pool, user))
	p := testutil.MakeProduct(testutil.WithStock(3))
	require.NoError(t, products.Create(ctx, &p))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		succeed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := &domain.Order{
				ID: "ord-" + testutil.UniqSuffix(), UserID: user.ID, Status: domain.StatusPending,
				Items: []domain.OrderItem{{ProductID: p.ID, Quantity: 1}},
			}
			if orders.Create(ctx, o) == nil {
				mu.Lock()
				succeed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 3, succeed)
	stock, err := testutil.StockOf(ctx, pg.Pool, p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stock)
}

func TestOrderRepo_UpdateStatus_TC(t *testing.T) {
	t.Parallel()
	pg := startPG(t)
	ctx := testCtx(t)

	products := pgrepo.NewProductRepository(pg.Pool)
	orders := pgrepo.NewOrderRepository(pg.Pool)

	user := testutil.MakeUser(domain.RoleCustomer)
	require.NoError(t, testutil.InsertUser(ctx, pg.Pool, user))
	p := testutil.MakeProduct(testutil.WithStock(5))
	require.NoError(t, products.Create(ctx, &p))

	order := &domain.Order{
		ID: "ord-" + testutil.UniqSuffix(), UserID: user.ID, Status: domain.StatusPending,
		Items: []domain.OrderItem{{ProductID: p.ID, Quantity: 2}},
	}
	require.NoError(t, orders.Create(ctx, order))

	paid, err := orders.UpdateStatus(ctx, order.ID, domain.StatusPending, domain.StatusPaid)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Status)
	require.Len(t, paid.Items, 1)

	// ожидали pending, а там уже paid
	_, err = orders.UpdateStatus(ctx, order.ID, domain.StatusPending, domain.StatusCancelled)
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = orders.UpdateStatus(ctx, "nope", domain.StatusPending, domain.StatusPaid)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = orders.UpdateStatus(ctx, order.ID, domain.StatusPaid, domain.StatusCancelled)
	require.NoError(t, err)

	stock, err := testutil.StockOf(ctx, pg.Pool, p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, stock, "cancel must restore reserved stock")

	list, err := orders.List(ctx, domain.OrderFilter{UserID: user.ID, Status: domain.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, orders.Delete(ctx, order.ID))
	require.ErrorIs(t, orders.Delete(ctx, order.ID), domain.ErrNotFound)
}

func TestUserRepo_DuplicateEmail_TC(t *testing.T) {
	t.Parallel()
	pg := startPG(t)
	ctx := testCtx(t)

	users := pgrepo.NewUserRepository(pg.Pool)

	u := testutil.MakeUser(domain.RoleAdmin)
	require.NoError(t, users.Create(ctx, &u))

	dup := testutil.MakeUser(domain.RoleCustomer)
	dup.Email = u.Email
	require.ErrorIs(t, users.Create(ctx, &dup), domain.ErrConflict)

	got, err := users.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)

	none, err := users.GetByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, none)
}
