package domain

import "errors"

// Базовые (sentinel) ошибки доменного слоя.
// Слои выше оборачивают их через fmt.Errorf("%w: ...") и различают через errors.Is.
var (
	// ErrNotFound — запись (товар, категория, заказ, пользователь) не найдена.
	ErrNotFound = errors.New("not found")

	// ErrValidation — некорректные входные данные (отрицательная цена/остаток, пустые поля и т.д.).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition — недопустимый переход статуса заказа.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrConflict — конфликт с текущим состоянием (дубликат email, параллельное изменение статуса).
	ErrConflict = errors.New("conflict")

	// ErrInsufficientStock — недостаточно товара на складе для оформления заказа.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnauthorized — нет токена, токен невалиден или истёк; неверные учётные данные.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden — у пользователя нет прав на операцию.
	ErrForbidden = errors.New("forbidden")

	// ErrCacheUnavailable — хранилище кэша недоступно. Наружу не пробрасывается.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrNotificationUnavailable — канал уведомлений недоступен. Наружу не пробрасывается.
	ErrNotificationUnavailable = errors.New("notification channel unavailable")
)
