package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
)

// ListingCache — кэш сериализованного полного списка товаров (один фиксированный ключ).
// Требования к реализации: все операции атомарны друг относительно друга;
// версия монотонно растёт при каждой инвалидации.
type ListingCache interface {
	// Get — снимок списка; (nil, false, nil) при промахе или истечении TTL.
	Get(ctx context.Context) ([]byte, bool, error)

	// Version — текущая версия. Снимается до чтения из хранилища.
	Version(ctx context.Context) (uint64, error)

	// Set — заменяет запись, только если version совпадает с текущей; возвращает факт записи.
	Set(ctx context.Context, data []byte, version uint64, ttl time.Duration) (bool, error)

	// Invalidate — безусловно удаляет запись и увеличивает версию.
	Invalidate(ctx context.Context) error
}

// ProductCache — кэш товаров по ID.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1); возврат копий сущности.
type ProductCache interface {
	// Get — вернуть товар по ID; (product, true) при попадании, (nil, false) при промахе/истечении.
	Get(ctx context.Context, id string) (*domain.Product, bool)

	// Version — текущая версия кэша (растёт при Delete/Purge).
	Version(ctx context.Context) uint64

	// Set — сохранить товар, если с момента снятия version не было инвалидаций.
	Set(ctx context.Context, product *domain.Product, version uint64) bool

	// Delete — удалить товар по ID.
	Delete(ctx context.Context, id string)

	// Purge — очистить кэш целиком.
	Purge(ctx context.Context)

	// WarmUp — массовая загрузка кэша (например, при старте).
	// Реализация должна поддерживать отмену контекста.
	WarmUp(ctx context.Context, products []*domain.Product) error
}
