package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gunvolt24/shop_backend/config"
	"github.com/Gunvolt24/shop_backend/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// Локальные переопределения окружения; отсутствие файла — не ошибка.
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, cleanup, err := app.Bootstrap(ctx, &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := application.Run(ctx); err != nil {
		application.Logger.Errorf(ctx, "service stopped with error: %v", err)
	}
}
