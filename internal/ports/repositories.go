package ports

import (
	"context"

	"github.com/Gunvolt24/shop_backend/internal/domain"
)

// ProductRepository — хранилище товаров.
// Get* возвращает (nil, nil), если записи нет; Update/Delete — domain.ErrNotFound.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	LastN(ctx context.Context, n int) ([]*domain.Product, error)
}

// CategoryRepository — хранилище категорий.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, limit, offset int) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	// Delete — удаляет категорию; у товаров ссылка обнуляется.
	// Возвращает число товаров, у которых сброшена категория.
	Delete(ctx context.Context, id string) (int64, error)
}

// OrderRepository — хранилище заказов.
type OrderRepository interface {
	// Create — в одной транзакции резервирует остатки, фиксирует цены и сохраняет заказ.
	// Заполняет order.Items[].Price и order.TotalPrice.
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
	// UpdateStatus — переводит заказ из from в to (оптимистичная проверка текущего статуса).
	// При переходе в cancelled возвращает зарезервированные остатки.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository — хранилище пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
