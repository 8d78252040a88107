//go:build !integration

package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/shop_backend/internal/domain"
)

// --- Бенчмарки ---

// GetProduct — сравниваем LEAN vs FULL пайплайн
func BenchmarkHTTP_GetProduct(b *testing.B) {
	p := benchProduct(1)
	h := NewHandler(Services{Products: svcProducts{list: []domain.Product{p}}}, nopLogger{}, 2*time.Second, WSConfig{})

	lean := makeLeanRouter(h)
	full := makeFullRouter(h)

	b.Run("lean/no-mw", func(b *testing.B) {
		benchServeGET(b, lean, "/products/"+p.ID)
	})
	b.Run("full/prod-mw", func(b *testing.B) {
		benchServeGET(b, full, "/products/"+p.ID)
	})
}

// Потолок без маршалинга: тот же товар, но заранее закодированный JSON
func BenchmarkHTTP_GetProduct_PreMarshaledBytes(b *testing.B) {
	raw, _ := json.Marshal(benchProduct(1))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/products/:id", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", raw)
	})

	benchServeGET(b, r, "/products/p-1")
}

// Полный список: 10/100/1000 — рост аллокаций и времени маршалинга
func BenchmarkHTTP_ListProducts(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run("N="+strconv.Itoa(n), func(b *testing.B) {
			list := make([]domain.Product, 0, n)
			for i := 0; i < n; i++ {
				list = append(list, benchProduct(i))
			}
			h := NewHandler(Services{Products: svcProducts{list: list}}, nopLogger{}, 2*time.Second, WSConfig{})

			benchServeGET(b, makeLeanRouter(h), "/products")
		})
	}
}

// Ошибочный путь (404): "цена" роутера и 404-хендлера
func BenchmarkHTTP_404(b *testing.B) {
	h := NewHandler(Services{Products: svcProducts{}}, nopLogger{}, 2*time.Second, WSConfig{})
	r := makeFullRouter(h)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != http.StatusNotFound {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}

// --- nopLogger — логгер, который не делает ничего. ---

type nopLogger struct{}

func (nopLogger) Debugf(context.Context, string, ...any)  {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// --- Стаб сервиса товаров: заранее подготовленная выборка ---

type svcProducts struct{ list []domain.Product }

func (s svcProducts) ListProducts(context.Context, domain.ProductFilter) ([]domain.Product, error) {
	return s.list, nil
}

func (s svcProducts) GetProduct(context.Context, string) (*domain.Product, error) {
	if len(s.list) == 0 {
		return nil, domain.ErrNotFound
	}
	return &s.list[0], nil
}

func (s svcProducts) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}

func (s svcProducts) UpdateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}

func (s svcProducts) PatchProduct(context.Context, string, domain.ProductPatch) (*domain.Product, error) {
	return s.GetProduct(context.Background(), "")
}

func (s svcProducts) DeleteProduct(context.Context, string) error { return nil }

// --- функции-помощники ---

func benchProduct(i int) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:          "p-" + strconv.Itoa(i),
		Name:        "Product " + strconv.Itoa(i),
		Description: "Benchmark product",
		Price:       float64(i%1000) + 0.99,
		Stock:       i % 50,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func makeLeanRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New() // без Recovery/otel/logger — получаем меньшую аллокацию
	r.GET("/products", h.listProducts)
	r.GET("/products/:id", h.getProduct)
	return r
}

func makeFullRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	// prod пайплайн из NewRouter
	return NewRouter(h, "")
}

func benchServeGET(b *testing.B, r *gin.Engine, path string) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()

	// Параллельный режим ближе к реальности без TCP
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req, _ := http.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != http.StatusOK {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}
