package ports

import "context"

// EventConsumer — фоновый приёмник событий заказов из брокера (kafka-бэкенд уведомлений).
// Run блокируется до отмены ctx или фатальной ошибки; Close можно вызывать повторно.
type EventConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
