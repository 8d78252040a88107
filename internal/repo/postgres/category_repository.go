package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
)

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository — категории в Postgres.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, description) VALUES ($1, $2, $3)
	`, category.ID, category.Name, category.Description); err != nil {
		return mapWriteError("insert category", err, domain.ErrValidation)
	}
	return nil
}

// GetByID — категория по ID. Если не нашли, возвращает (nil, nil).
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &c, nil
}

// List — категории по имени; limit <= 0 — без ограничения.
func (r *CategoryRepository) List(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	if offset < 0 {
		offset = 0
	}
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description
		FROM categories
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("categories rows: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories SET name = $2, description = $3 WHERE id = $1
	`, category.ID, category.Name, category.Description)
	if err != nil {
		return mapWriteError("update category", err, domain.ErrValidation)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category %s", domain.ErrNotFound, category.ID)
	}
	return nil
}

// Delete — удаляет категорию, предварительно отвязав товары (в одной транзакции).
func (r *CategoryRepository) Delete(ctx context.Context, id string) (int64, error) {
	var detached int64
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE products SET category_id = NULL, updated_at = now() WHERE category_id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("detach products: %w", err)
		}
		detached = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: category %s", domain.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return detached, nil
}
