package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shop_backend/internal/domain"
)

// Коды ошибок Postgres, которые имеют доменный смысл.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

// pgCode — SQLSTATE ошибки Postgres или "".
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapWriteError — переводит нарушения ограничений в доменные ошибки.
// onForeignKey — ошибка для нарушения внешнего ключа (зависит от операции).
func mapWriteError(op string, err error, onForeignKey error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s: already exists", domain.ErrConflict, op)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", onForeignKey, op)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s: constraint violated", domain.ErrValidation, op)
	case codeNumericOutOfRange:
		// цена или сумма заказа не помещается в NUMERIC(12,2)
		return fmt.Errorf("%w: %s: numeric value out of range", domain.ErrValidation, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// withTx — выполняет fn в транзакции; коммит только при nil-ошибке.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
