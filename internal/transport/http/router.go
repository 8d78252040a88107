package rest

import (
	"context"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Services — зависимости транспортного слоя.
type Services struct {
	Products    ports.ProductService
	Categories  ports.CategoryService
	Orders      ports.OrderService
	Auth        ports.AuthService
	Subscriber  ports.OrderEventSubscriber
	HealthCheck func(ctx context.Context) error
}

// WSConfig — параметры keepalive websocket-соединения.
type WSConfig struct {
	PingInterval time.Duration
	PongWait     time.Duration
	RequireAuth  bool
}

type Handler struct {
	products   ports.ProductService
	categories ports.CategoryService
	orders     ports.OrderService
	auth       ports.AuthService
	subscriber ports.OrderEventSubscriber
	health     func(ctx context.Context) error

	log     ports.Logger
	timeout time.Duration
	ws      WSConfig
}

func NewHandler(svc Services, log ports.Logger, timeout time.Duration, ws WSConfig) *Handler {
	if ws.PingInterval <= 0 {
		ws.PingInterval = 30 * time.Second
	}
	if ws.PongWait <= ws.PingInterval {
		ws.PongWait = 2 * ws.PingInterval
	}
	return &Handler{
		products:   svc.Products,
		categories: svc.Categories,
		orders:     svc.Orders,
		auth:       svc.Auth,
		subscriber: svc.Subscriber,
		health:     svc.HealthCheck,
		log:        log,
		timeout:    timeout,
		ws:         ws,
	}
}

// NewRouter — gin-роутер со всеми маршрутами API.
// otelServiceName пустой — трейсинг запросов выключен.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(gin.Recovery())
	r.Use(httpx.Metrics())
	r.Use(httpx.RequestLogger(h.log))
	r.Use(h.authenticate())

	r.NoRoute(func(c *gin.Context) { abortError(c, codeNotFound, "route not found") })
	r.NoMethod(func(c *gin.Context) { abortError(c, codeMethodNotAllowed, "method not allowed") })

	r.GET("/ping", h.ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := r.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/token", h.obtainToken)
	authGroup.POST("/token/refresh", h.refreshToken)

	products := r.Group("/products")
	products.GET("", h.listProducts)
	products.GET("/:id", h.getProduct)
	products.POST("", requireAdmin(), h.createProduct)
	products.PUT("/:id", requireAdmin(), h.updateProduct)
	products.PATCH("/:id", requireAdmin(), h.patchProduct)
	products.DELETE("/:id", requireAdmin(), h.deleteProduct)

	categories := r.Group("/categories")
	categories.GET("", h.listCategories)
	categories.GET("/:id", h.getCategory)
	categories.POST("", requireAdmin(), h.createCategory)
	categories.PUT("/:id", requireAdmin(), h.updateCategory)
	categories.PATCH("/:id", requireAdmin(), h.patchCategory)
	categories.DELETE("/:id", requireAdmin(), h.deleteCategory)

	orders := r.Group("/orders", requireAuth())
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.POST("", h.createOrder)
	orders.PUT("/:id", h.updateOrderStatus)
	orders.PATCH("/:id", h.updateOrderStatus)
	orders.DELETE("/:id", requireAdmin(), h.deleteOrder)

	r.GET("/ws/orders/:user_id", h.orderEvents)

	return r
}

func (h *Handler) ping(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := h.requestContext(c)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.log.Warnf(ctx, "health check failed: %v", err)
			c.String(503, "unavailable")
			return
		}
	}
	c.String(200, "pong")
}

// requestContext — контекст запроса с таймаутом обработчика (0 — без таймаута).
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}
