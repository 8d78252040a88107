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

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository — учётные записи в Postgres.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, user.ID, user.Email, user.PasswordHash, string(user.Role)).Scan(&user.CreatedAt)
	if err != nil {
		return mapWriteError("insert user", err, domain.ErrValidation)
	}
	return nil
}

// GetByID — пользователь по ID. Если не нашли, возвращает (nil, nil).
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail — пользователь по email. Если не нашли, возвращает (nil, nil).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}
