package ports

import (
	"context"

	"github.com/Gunvolt24/shop_backend/internal/domain"
)

// EventPublisher — публикация событий заказов в канал уведомлений.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// Validator — доменная валидация входных структур.
// Возвращает domain.ErrValidation (с обёрнутой причиной) при любой проблеме.
type Validator interface {
	Validate(ctx context.Context, v any) error
}

// PasswordHasher — хэширование и проверка паролей.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenManager — выпуск и проверка JWT.
type TokenManager interface {
	IssuePair(user *domain.User) (domain.TokenPair, error)
	ParseAccess(token string) (domain.Principal, error)
	ParseRefresh(token string) (domain.Principal, error)
	IssueAccess(principal domain.Principal) (string, error)
}

// ProductService — сервис товаров (для транспорта).
type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	PatchProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// CategoryService — сервис категорий (для транспорта).
type CategoryService interface {
	ListCategories(ctx context.Context, limit, offset int) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	PatchCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// OrderService — сервис заказов (для транспорта).
type OrderService interface {
	ListOrders(ctx context.Context, principal domain.Principal, filter domain.OrderFilter) ([]*domain.Order, error)
	GetOrder(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, input domain.NewOrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, principal domain.Principal, id string, to domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// AuthService — регистрация и выпуск токенов (для транспорта).
type AuthService interface {
	Register(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (domain.Principal, error)
}

// OrderEventSubscriber — подписка на события заказов одного пользователя.
// cancel освобождает подписку и закрывает канал; повторный вызов безопасен.
type OrderEventSubscriber interface {
	Subscribe(userID string) (events <-chan domain.OrderEvent, cancel func())
}
