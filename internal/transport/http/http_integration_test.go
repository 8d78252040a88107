//go:build integration

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/shop_backend/internal/auth"
	cachemem "github.com/Gunvolt24/shop_backend/internal/cache/memory"
	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/notify"
	pgrepo "github.com/Gunvolt24/shop_backend/internal/repo/postgres"
	"github.com/Gunvolt24/shop_backend/internal/testutil"
	rest "github.com/Gunvolt24/shop_backend/internal/transport/http"
	"github.com/Gunvolt24/shop_backend/internal/usecase"
	"github.com/Gunvolt24/shop_backend/pkg/logger"
	"github.com/Gunvolt24/shop_backend/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const (
	itAdminEmail    = "admin@shop.test"
	itAdminPassword = "admin-password"
)

type itStack struct {
	ts   *httptest.Server
	pool *pgxpool.Pool
	hub  *notify.Hub
}

// newStack — вся цепочка поверх Postgres в контейнере, как в bootstrap.
func newStack(t *testing.T) *itStack {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	listing := cachemem.NewListingCache()
	products := cachemem.NewProductLRU(100, time.Minute)
	hub := notify.NewHub(8)
	t.Cleanup(hub.Close)
	v := validate.NewValidator()

	authSvc := usecase.NewAuthService(
		pgrepo.NewUserRepository(pg.Pool),
		auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewJWTManager("it-secret", "shop-it", time.Minute, time.Hour),
		v, logg,
	)
	require.NoError(t, authSvc.EnsureAdmin(ctx, itAdminEmail, itAdminPassword))

	h := rest.NewHandler(rest.Services{
		Products:    usecase.NewProductService(pgrepo.NewProductRepository(pg.Pool), listing, products, v, logg, time.Minute),
		Categories:  usecase.NewCategoryService(pgrepo.NewCategoryRepository(pg.Pool), listing, products, v, logg),
		Orders:      usecase.NewOrderService(pgrepo.NewOrderRepository(pg.Pool), listing, products, usecase.NewOrderDispatcher(hub, logg), v, logg),
		Auth:        authSvc,
		Subscriber:  hub,
		HealthCheck: pgrepo.HealthCheck(pg.Pool),
	}, logg, 5*time.Second, rest.WSConfig{RequireAuth: true})

	ts := httptest.NewServer(rest.NewRouter(h, ""))
	t.Cleanup(ts.Close)

	return &itStack{ts: ts, pool: pg.Pool, hub: hub}
}

func (s *itStack) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *itStack) login(t *testing.T, email, password string) string {
	t.Helper()
	var pair domain.TokenPair
	code := s.call(t, http.MethodPost, "/auth/token", "", domain.Credentials{Email: email, Password: password}, &pair)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, pair.Access)
	return pair.Access
}

func (s *itStack) registerCustomer(t *testing.T) (userID, token string) {
	t.Helper()
	creds := domain.Credentials{Email: "c-" + testutil.UniqSuffix() + "@shop.test", Password: "customer-pass"}
	var user domain.User
	require.Equal(t, http.StatusCreated, s.call(t, http.MethodPost, "/auth/register", "", creds, &user))
	return user.ID, s.login(t, creds.Email, creds.Password)
}

// 1) Каталог: создание, кэшированный список видит изменения сразу после записи
func TestHTTP_Catalog_ListingFreshAfterWrite_TC(t *testing.T) {
	s := newStack(t)
	adminTok := s.login(t, itAdminEmail, itAdminPassword)

	var cat domain.Category
	require.Equal(t, http.StatusCreated,
		s.call(t, http.MethodPost, "/categories", adminTok, domain.Category{Name: "Phones"}, &cat))

	var first []domain.Product
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/products", "", nil, &first))
	require.Empty(t, first)

	var p domain.Product
	require.Equal(t, http.StatusCreated, s.call(t, http.MethodPost, "/products", adminTok,
		domain.Product{Name: "Phone", Price: 199.99, Stock: 3, CategoryID: &cat.ID}, &p))

	var second []domain.Product
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/products", "", nil, &second))
	require.Len(t, second, 1)
	require.Equal(t, p.ID, second[0].ID)

	var filtered []domain.Product
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/products?category="+cat.ID+"&min_price=100", "", nil, &filtered))
	require.Len(t, filtered, 1)

	require.Equal(t, http.StatusNoContent, s.call(t, http.MethodDelete, "/categories/"+cat.ID, adminTok, nil, nil))

	var got domain.Product
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/products/"+p.ID, "", nil, &got))
	require.Nil(t, got.CategoryID)
}

// 2) Заказ: резерв остатков, отказ при нехватке, уведомление о смене статуса
func TestHTTP_Order_Lifecycle_WithNotification_TC(t *testing.T) {
	s := newStack(t)
	adminTok := s.login(t, itAdminEmail, itAdminPassword)
	userID, userTok := s.registerCustomer(t)

	var p domain.Product
	require.Equal(t, http.StatusCreated, s.call(t, http.MethodPost, "/products", adminTok,
		domain.Product{Name: "Laptop", Price: 1000, Stock: 2}, &p))

	// Прогреваем снимок товара в кэше: после заказа он должен обновиться
	var before domain.Product
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/products/"+p.ID, "", nil, &before))
	require.Equal(t, 2, before.Stock)

	// Подписка на уведомления
	url := "ws" + strings.TrimPrefix(s.ts.URL, "http") + "/ws/orders/" + userID + "?token=" + userTok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Subscribers(userID) == 1 }, 2*time.Second, 10*time.Millisecond)

	var order domain.Order
	require.Equal(t, http.StatusCreated, s.call(t, http.MethodPost, "/orders", userTok,
		map[string]any{"items": []map[string]any{{"product_id": p.ID, "quantity": 2}}}, &order))
	require.Equal(t, domain.StatusPending, order.Status)
	require.InDelta(t, 2000.0, order.TotalPrice, 0.001)

	var ev map[string]any
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, order.ID, ev["order_id"])
	require.Equal(t, "pending", ev["status"])

	var after domain.Product
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/products/"+p.ID, "", nil, &after))
	require.Equal(t, 0, after.Stock)

	require.Equal(t, http.StatusConflict, s.call(t, http.MethodPost, "/orders", userTok,
		map[string]any{"items": []map[string]any{{"product_id": p.ID, "quantity": 1}}}, nil))

	// Покупатель не может оплатить сам; администратор может
	require.Equal(t, http.StatusForbidden, s.call(t, http.MethodPatch, "/orders/"+order.ID, userTok,
		map[string]any{"status": "paid"}, nil))
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPatch, "/orders/"+order.ID, adminTok,
		map[string]any{"status": "paid"}, nil))

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "paid", ev["status"])

	// Отмена возвращает остатки
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPatch, "/orders/"+order.ID, userTok,
		map[string]any{"status": "cancelled"}, nil))
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/products/"+p.ID, "", nil, &after))
	require.Equal(t, 2, after.Stock)

	require.Equal(t, http.StatusConflict, s.call(t, http.MethodPatch, "/orders/"+order.ID, adminTok,
		map[string]any{"status": "shipped"}, nil))
}

// 3) Чужой заказ не виден покупателю
func TestHTTP_Order_ForeignHidden_TC(t *testing.T) {
	s := newStack(t)
	adminTok := s.login(t, itAdminEmail, itAdminPassword)
	_, aliceTok := s.registerCustomer(t)
	_, bobTok := s.registerCustomer(t)

	var p domain.Product
	require.Equal(t, http.StatusCreated, s.call(t, http.MethodPost, "/products", adminTok,
		domain.Product{Name: "Mouse", Price: 10, Stock: 5}, &p))

	var order domain.Order
	require.Equal(t, http.StatusCreated, s.call(t, http.MethodPost, "/orders", aliceTok,
		map[string]any{"items": []map[string]any{{"product_id": p.ID, "quantity": 1}}}, &order))

	require.Equal(t, http.StatusNotFound, s.call(t, http.MethodGet, "/orders/"+order.ID, bobTok, nil, nil))

	var bobOrders []domain.Order
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/orders", bobTok, nil, &bobOrders))
	require.Empty(t, bobOrders)

	var all []domain.Order
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/orders", adminTok, nil, &all))
	require.Len(t, all, 1)
}

// 4) /ping проверяет БД
func TestHTTP_Ping_ChecksDatabase_TC(t *testing.T) {
	s := newStack(t)

	resp, err := http.Get(s.ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s.pool.Close()

	resp2, err := http.Get(s.ts.URL + "/ping")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}
