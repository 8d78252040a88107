//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shop_backend/internal/domain"
)

func UniqSuffix() string { return uuid.NewString()[:8] }

// MakeProduct — валидный товар с уникальным ID.
func MakeProduct(opts ...func(*domain.Product)) domain.Product {
	p := domain.Product{
		ID:          "prd-" + UniqSuffix(),
		Name:        "Phone " + UniqSuffix(),
		Description: "test product",
		Price:       10,
		Stock:       5,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithPrice(price float64) func(*domain.Product) {
	return func(p *domain.Product) { p.Price = price }
}

func WithStock(stock int) func(*domain.Product) {
	return func(p *domain.Product) { p.Stock = stock }
}

func WithCategory(id string) func(*domain.Product) {
	return func(p *domain.Product) { p.CategoryID = &id }
}

// MakeUser — пользователь с уникальным email (хэш пароля — заглушка).
func MakeUser(role domain.Role) domain.User {
	suffix := UniqSuffix()
	return domain.User{
		ID:           "usr-" + suffix,
		Email:        fmt.Sprintf("user-%s@shop.test", suffix),
		PasswordHash: "not-a-real-hash",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}

// InsertUser — прямой INSERT пользователя (минуя сервисы).
func InsertUser(ctx context.Context, pool *pgxpool.Pool, u domain.User) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role) VALUES ($1, $2, $3, $4)
	`, u.ID, u.Email, u.PasswordHash, string(u.Role))
	return err
}

// StockOf — текущий остаток товара.
func StockOf(ctx context.Context, pool *pgxpool.Pool, productID string) (int, error) {
	var stock int
	err := pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	return stock, err
}
