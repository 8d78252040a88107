package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
)

// Проверка, что ProductRepository удовлетворяет интерфейсу ProductRepository.
var _ ports.ProductRepository = (*ProductRepository)(nil)

const productColumns = `id, name, description, price, stock, category_id, created_at, updated_at`

// Сортировки списка товаров → ORDER BY. id добавляется для стабильного порядка.
var productOrderBy = map[string]string{
	"name":        "name ASC, id ASC",
	"-name":       "name DESC, id DESC",
	"price":       "price ASC, id ASC",
	"-price":      "price DESC, id DESC",
	"stock":       "stock ASC, id ASC",
	"-stock":      "stock DESC, id DESC",
	"created_at":  "created_at ASC, id ASC",
	"-created_at": "created_at DESC, id DESC",
}

const defaultProductOrderBy = "created_at DESC, id DESC"

// ProductRepository — товары в Postgres (pgxpool).
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product == nil || product.ID == "" {
		return errors.New("product is empty or id is required")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, description, price, stock, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, product.ID, product.Name, product.Description, product.Price, product.Stock, product.CategoryID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return mapWriteError("insert product", err, errUnknownCategory)
	}
	return nil
}

// GetByID — товар по ID. Если не нашли, возвращает (nil, nil).
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

// List — список товаров с фильтрами. Пустой фильтр — весь каталог без пагинации.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query, args := buildProductQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, product.ID, product.Name, product.Description, product.Price, product.Stock, product.CategoryID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, product.ID)
	}
	if err != nil {
		return mapWriteError("update product", err, errUnknownCategory)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapWriteError("delete product", err, errProductInOrders)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return nil
}

// LastN — последние N товаров (для прогрева кэша).
func (r *ProductRepository) LastN(ctx context.Context, n int) ([]*domain.Product, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("select last products: %w", err)
	}
	defer rows.Close()

	var result []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("last rows: %w", err)
	}
	return result, nil
}

// ------вспомогательные функции------

var (
	errUnknownCategory = fmt.Errorf("%w: category does not exist", domain.ErrValidation)
	errProductInOrders = fmt.Errorf("%w: product is referenced by orders", domain.ErrConflict)
)

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// buildProductQuery — SELECT с WHERE по заданным полям фильтра; значения только через плейсхолдеры.
func buildProductQuery(f domain.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.CategoryID != "" {
		conds = append(conds, "category_id = "+arg(f.CategoryID))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	if f.InStock != nil {
		if *f.InStock {
			conds = append(conds, "stock > 0")
		} else {
			conds = append(conds, "stock = 0")
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		conds = append(conds, "(name ILIKE "+p+" OR description ILIKE "+p+")")
	}

	var b strings.Builder
	b.WriteString("SELECT " + productColumns + " FROM products")
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	orderBy, ok := productOrderBy[f.Ordering]
	if !ok {
		orderBy = defaultProductOrderBy
	}
	b.WriteString(" ORDER BY " + orderBy)

	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	if f.Offset > 0 {
		b.WriteString(" OFFSET " + arg(f.Offset))
	}
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
