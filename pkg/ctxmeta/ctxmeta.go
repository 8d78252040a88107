// Пакет ctxmeta — нейтральный слой для работы с метаданными запроса,
// которые прокидываются через context.Context (request_id, user_id, trace_id).
// HTTP-слой и логгер зависят от небольшого общего пакета, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (неэкспортируемый тип — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeyUserID    ctxKey = "user_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyRequestID)
}

// WithUserID кладёт ID аутентифицированного пользователя в контекст.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, KeyUserID, userID)
}

// UserIDFromContext достаёт ID пользователя из контекста.
func UserIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyUserID)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil || value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
