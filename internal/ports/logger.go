package ports

import "context"

// Logger — контракт логгера для сервисов, транспорта и фоновых воркеров.
// Поля запроса (request_id, user_id, trace_id/span_id) реализация берёт из ctx сама.
type Logger interface {
	Debugf(ctx context.Context, format string, args ...any) // шумные события: кэш, ws-трафик
	Infof(ctx context.Context, format string, args ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
}
