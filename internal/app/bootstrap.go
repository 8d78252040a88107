package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Gunvolt24/shop_backend/config"
	"github.com/Gunvolt24/shop_backend/internal/auth"
	cachemem "github.com/Gunvolt24/shop_backend/internal/cache/memory"
	"github.com/Gunvolt24/shop_backend/internal/kafka"
	"github.com/Gunvolt24/shop_backend/internal/notify"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/internal/repo/postgres"
	rest "github.com/Gunvolt24/shop_backend/internal/transport/http"
	"github.com/Gunvolt24/shop_backend/internal/usecase"
	"github.com/Gunvolt24/shop_backend/pkg/logger"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
	"github.com/Gunvolt24/shop_backend/pkg/telemetry"
	"github.com/Gunvolt24/shop_backend/pkg/validate"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
)

// Бэкенды канала уведомлений.
const (
	NotifyLocal = "local"
	NotifyKafka = "kafka"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer).
type App struct {
	Logger          ports.Logger        // логгер
	HTTPServer      *http.Server        // HTTP-сервер API
	MetricsServer   *http.Server        // отдельный сервер /metrics; nil — только на основном роутере
	KafkaConsumer   ports.EventConsumer // консьюмер событий; nil при локальном бэкенде уведомлений
	Hub             *notify.Hub         // хаб уведомлений; закрывается при остановке
	gracefulTimeout time.Duration       // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// notifyBackend — публикатор событий заказов и (для kafka) консьюмер, доставляющий их в хаб.
type notifyBackend struct {
	publisher ports.EventPublisher
	consumer  ports.EventConsumer
	close     func() error
}

// newNotifyBackend — local: события сразу в хаб процесса;
// kafka: события в топик, каждый инстанс читает топик своей группой и раздаёт в свой хаб.
func newNotifyBackend(cfg *config.Config, hub *notify.Hub, log ports.Logger) (*notifyBackend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Notify.Backend)) {
	case "", NotifyLocal:
		return &notifyBackend{publisher: hub, close: func() error { return nil }}, nil
	case NotifyKafka:
		producer := kafka.NewProducer(&kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		consumer := kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topic,
			GroupID:        kafka.InstanceGroupID(cfg.Kafka.GroupID, instanceID(cfg.Kafka.InstanceID, os.Hostname)),
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
			MaxWait:        cfg.Kafka.MaxWait,
		}, hub, log)
		return &notifyBackend{publisher: producer, consumer: consumer, close: producer.Close}, nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q (want %s|%s)", cfg.Notify.Backend, NotifyLocal, NotifyKafka)
	}
}

// instanceID — стабильный id инстанса для его consumer group: из конфигурации, иначе hostname.
// Случайный суффикс — только если hostname недоступен; такая группа после рестарта не переиспользуется.
func instanceID(configured string, hostname func() (string, error)) string {
	if id := strings.TrimSpace(configured); id != "" {
		return id
	}
	if h, err := hostname(); err == nil && strings.TrimSpace(h) != "" {
		return strings.TrimSpace(h)
	}
	return uuid.NewString()[:8]
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}
	fail := func(err error, cleanups ...func()) (*App, Cleanup, error) {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Миграции схемы до открытия пула.
	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(cfg.Postgres.DSN); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
		logg.Infof(ctx, "database migrations applied")
	}

	// Пул подключений Postgres
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return fail(err)
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Кэши и канал уведомлений.
	listingCache := cachemem.NewListingCache()
	productCache := cachemem.NewProductLRU(cfg.Cache.ProductCapacity, cfg.Cache.ProductTTL)
	hub := notify.NewHub(cfg.Notify.Buffer)

	backend, err := newNotifyBackend(cfg, hub, logg)
	if err != nil {
		return fail(err, hub.Close, pool.Close)
	}
	logg.Infof(ctx, "notify backend=%s", cfg.Notify.Backend)

	// Сборка зависимостей доменного слоя.
	validator := validate.NewValidator()
	productService := usecase.NewProductService(
		postgres.NewProductRepository(pool), listingCache, productCache, validator, logg, cfg.Cache.ListingTTL)
	categoryService := usecase.NewCategoryService(
		postgres.NewCategoryRepository(pool), listingCache, productCache, validator, logg)
	orderService := usecase.NewOrderService(
		postgres.NewOrderRepository(pool), listingCache, productCache,
		usecase.NewOrderDispatcher(backend.publisher, logg), validator, logg)
	authService := usecase.NewAuthService(
		postgres.NewUserRepository(pool),
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		validator, logg)

	if cfg.Auth.Secret == "change-me" {
		logg.Warnf(ctx, "AUTH_SECRET is the default value, set a real secret in production")
	}

	// Администратор из конфигурации.
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fail(fmt.Errorf("ensure admin: %w", err), hub.Close, pool.Close)
	}

	// Прогрев кэша товаров
	if n := cfg.Cache.WarmUpN; n > 0 {
		if err := productService.WarmUpCache(ctx, n); err != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", err)
		}
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(rest.Services{
		Products:    productService,
		Categories:  categoryService,
		Orders:      orderService,
		Auth:        authService,
		Subscriber:  hub,
		HealthCheck: postgres.HealthCheck(pool),
	}, logg, cfg.HTTP.HandlerTimeout, rest.WSConfig{
		PingInterval: cfg.Notify.PingInterval,
		PongWait:     cfg.Notify.PongWait,
		RequireAuth:  cfg.Notify.RequireAuth,
	})
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	var metricsSrv *http.Server
	if addr := strings.TrimSpace(cfg.Metrics.Addr); addr != "" && addr != cfg.HTTP.Addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout}
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		MetricsServer:   metricsSrv,
		KafkaConsumer:   backend.consumer,
		Hub:             hub,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if err := backend.close(); err != nil {
			logg.Warnf(ctx, "notify backend close error: %v", err)
		}
		hub.Close()

		pool.Close()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер(ы) и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	// Запуск консьюмера (только для kafka-бэкенда уведомлений).
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if a.MetricsServer != nil {
		go func() {
			a.Logger.Infof(ctx, "metrics server starting (addr=%s)", a.MetricsServer.Addr)
			if err := a.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Websocket-соединения Shutdown не отслеживает: закрытие хаба завершает их сам.
	if a.Hub != nil {
		a.Hub.Close()
	}

	if a.MetricsServer != nil {
		if err := a.MetricsServer.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "metrics server shutdown failed: %v", err)
		}
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
