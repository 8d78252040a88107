package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository — заказы в Postgres (pgxpool).
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository - конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

// Create — в одной транзакции резервирует остатки, фиксирует цены позиций и сохраняет заказ.
// Товары блокируются в порядке ID, чтобы параллельные заказы не взаимоблокировались.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return errors.New("order is empty or id is required")
	}
	if order.UserID == "" {
		return errors.New("user_id is required")
	}

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		idx := make([]int, len(order.Items))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool { return order.Items[idx[a]].ProductID < order.Items[idx[b]].ProductID })

		var total float64
		for _, i := range idx {
			item := &order.Items[i]
			price, err := reserveStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			item.Price = price
			total += price * float64(item.Quantity)
		}
		order.TotalPrice = math.Round(total*100) / 100

		if err := tx.QueryRow(ctx, `
			INSERT INTO orders (id, user_id, total_price, status)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`, order.ID, order.UserID, order.TotalPrice, string(order.Status),
		).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
			return mapWriteError("insert order", err, errUnknownUser)
		}

		return copyItems(ctx, tx, order.ID, order.Items)
	})
}

// GetByID — заказ с позициями. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `
		SELECT id, user_id, total_price, status, created_at, updated_at
		FROM orders WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	if err := attachItems(ctx, r.pool, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// List — страница заказов (новые первыми).
// Два запроса на страницу: базовые заказы + позиции, склейка в памяти с сохранением порядка.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var (
		conds []string
		args  []any
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, "user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, total_price, status, created_at, updated_at
		FROM orders
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil // пустая страница
	}

	if err := attachItems(ctx, r.pool, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus — переводит заказ из from в to. Если статус успели поменять — ErrConflict.
// Отмена возвращает зарезервированные остатки в той же транзакции.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	var order *domain.Order
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, `
			UPDATE orders SET status = $3, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING id, user_id, total_price, status, created_at, updated_at
		`, id, string(from), string(to)))
		if errors.Is(err, pgx.ErrNoRows) {
			return missingOrConflict(ctx, tx, id)
		}
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		if to == domain.StatusCancelled {
			if _, err := tx.Exec(ctx, `
				UPDATE products p
				SET stock = p.stock + oi.quantity, updated_at = now()
				FROM order_items oi
				WHERE oi.order_id = $1 AND p.id = oi.product_id
			`, id); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		return attachItems(ctx, tx, []*domain.Order{order})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return nil
}

// ------вспомогательные функции------

var errUnknownUser = fmt.Errorf("%w: user does not exist", domain.ErrValidation)

// querier — общее у пула и транзакции.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// reserveStock — списывает quantity со склада и возвращает текущую цену товара.
func reserveStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (float64, error) {
	var price float64
	err := tx.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING price
	`, productID, quantity).Scan(&price)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("reserve stock: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	return 0, fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, productID)
}

func missingOrConflict(ctx context.Context, tx pgx.Tx, id string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return fmt.Errorf("%w: order %s status changed concurrently", domain.ErrConflict, id)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.TotalPrice, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// attachItems — дочитывает позиции для набора заказов одним запросом.
func attachItems(ctx context.Context, q querier, orders []*domain.Order) error {
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = []domain.OrderItem{}
	}

	rows, err := q.Query(ctx, `
		SELECT order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1::text[])
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    domain.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("items rows: %w", err)
	}
	return nil
}

// copyItems — вставка позиций через COPY (CopyFromRows); быстрее, чем INSERT в цикле.
func copyItems(ctx context.Context, tx pgx.Tx, orderID string, items []domain.OrderItem) error {
	rows := make([][]any, 0, len(items))
	for i, item := range items {
		rows = append(rows, []any{orderID, item.ProductID, i, item.Quantity, item.Price})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "position", "quantity", "price"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy items: %w", err)
	}
	return nil
}
