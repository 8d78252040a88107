package logger

import (
	"context"

	"github.com/Gunvolt24/shop_backend/pkg/ctxmeta"
	"go.uber.org/zap"
)

// ZapLogger — реализация ports.Logger поверх zap.
// Метаданные запроса из ctx (request_id, user_id, trace/span) добавляются полями.
type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	isProd bool
}

// NewZapLogger — production (JSON) или development (консоль) конфигурация.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, nil, err
	}

	loggerWrap := newFrom(logger, isProd)
	cleanup := func() error { return loggerWrap.base.Sync() }
	return loggerWrap, cleanup, nil
}

// NewFromZap — обёртка над готовым *zap.Logger (например, zaptest/observer в тестах).
func NewFromZap(logger *zap.Logger) *ZapLogger { return newFrom(logger, false) }

func newFrom(logger *zap.Logger, isProd bool) *ZapLogger {
	// +1: пропускаем собственный фрейм обёртки, чтобы caller указывал на вызывающий код.
	logger = logger.WithOptions(zap.AddCallerSkip(1))
	return &ZapLogger{
		base:   logger,
		sugar:  logger.Sugar(),
		isProd: isProd,
	}
}

func (z *ZapLogger) Debugf(ctx context.Context, format string, args ...any) {
	z.withContext(ctx).Debugf(format, args...)
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.withContext(ctx).Infof(format, args...)
}

func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.withContext(ctx).Warnf(format, args...)
}

func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.withContext(ctx).Errorf(format, args...)
}

// withContext — sugared-логгер с полями из ctx; без метаданных возвращается базовый.
func (z *ZapLogger) withContext(ctx context.Context) *zap.SugaredLogger {
	fields := make([]any, 0, 8)
	if rid, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", rid)
	}
	if uid, ok := ctxmeta.UserIDFromContext(ctx); ok {
		fields = append(fields, "user_id", uid)
	}
	if tr, ok := ctxmeta.TraceIDFromContext(ctx); ok {
		fields = append(fields, "trace_id", tr)
	}
	if sp, ok := ctxmeta.SpanIDFromContext(ctx); ok {
		fields = append(fields, "span_id", sp)
	}
	if len(fields) == 0 {
		return z.sugar
	}
	return z.sugar.With(fields...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }
func (z *ZapLogger) IsProd() bool                { return z.isProd }
