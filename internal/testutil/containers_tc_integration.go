//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.8"

	testDBName     = "shop"
	testDBUser     = "shop"
	testDBPassword = "shop"
)

var tcLog = log.New(os.Stdout, "[tc] ", log.LstdFlags|log.Lmicroseconds)

// lifecycleLog — пишет старт и остановку контейнера с коротким id и ролью в тесте.
func lifecycleLog(role string) tc.ContainerLifecycleHooks {
	short := func(c tc.Container) string {
		id := c.GetContainerID()
		if len(id) > 12 {
			return id[:12]
		}
		return id
	}
	return tc.ContainerLifecycleHooks{
		PostStarts: []tc.ContainerHook{
			func(ctx context.Context, c tc.Container) error {
				endpoint, _ := c.Endpoint(ctx, "")
				tcLog.Printf("%s started id=%s endpoint=%s", role, short(c), endpoint)
				return nil
			},
		},
		PostTerminates: []tc.ContainerHook{
			func(_ context.Context, c tc.Container) error {
				tcLog.Printf("%s terminated id=%s", role, short(c))
				return nil
			},
		},
	}
}

// PGContainer — Postgres с применёнными миграциями магазина и открытым пулом.
type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC поднимает Postgres, накатывает миграции и открывает пул.
// stop закрывает пул и удаляет контейнер.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(ctx, postgresImage,
		tc.WithLifecycleHooks(lifecycleLog("postgres")),
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPassword),
		// сообщение о готовности печатается дважды: init-скрипты и финальный старт
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}

	fail := func(step string, err error) (*PGContainer, func(context.Context) error, error) {
		_ = tc.TerminateContainer(pg)
		return nil, nil, fmt.Errorf("%s: %w", step, err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fail("connection string", err)
	}
	if err := ApplyMigrations(dsn); err != nil {
		return fail("migrate", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fail("parse dsn", err)
	}
	// параллельные тесты в одном пакете делят контейнер только внутри теста
	cfg.MaxConns = 8
	cfg.ConnConfig.RuntimeParams["application_name"] = "shop-backend-it"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fail("open pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fail("ping", err)
	}

	stop := func(context.Context) error {
		pool.Close()
		return tc.TerminateContainer(pg)
	}
	return &PGContainer{Container: pg, Pool: pool, DSN: dsn}, stop, nil
}

// KafkaEnv — Redpanda как Kafka-совместимый брокер для событий заказов.
type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string
}

// StartKafkaTC поднимает Redpanda; baseTopic — префикс для уникальных топиков тестов.
func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(ctx, redpandaImage,
		tc.WithLifecycleHooks(lifecycleLog("redpanda")),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	seed, err := rp.KafkaSeedBroker(ctx)
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("seed broker: %w", err)
	}

	stop := func(context.Context) error { return tc.TerminateContainer(rp) }
	return &KafkaEnv{Container: rp, Brokers: []string{seed}, BaseTopic: baseTopic}, stop, nil
}
