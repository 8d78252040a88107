//go:build integration

package testutil

import (
	"fmt"

	pgrepo "github.com/Gunvolt24/shop_backend/internal/repo/postgres"
)

// ApplyMigrations — накатывает встроенные миграции на тестовую БД.
func ApplyMigrations(dsn string) error {
	if err := pgrepo.Migrate(dsn); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
