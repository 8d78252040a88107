package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
)

var _ ports.AuthService = (*AuthService)(nil)

// AuthService — регистрация, выпуск и проверка токенов.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenManager
	validator ports.Validator
	log       ports.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenManager,
	validator ports.Validator,
	log ports.Logger,
) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, validator: validator, log: log}
}

// Register — новый покупатель. Повторный email — ErrConflict.
func (s *AuthService) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	return s.createUser(ctx, creds, domain.RoleCustomer)
}

// Login — пара токенов по email и паролю.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		return domain.TokenPair{}, err
	}
	if user == nil || !s.hasher.Compare(user.PasswordHash, creds.Password) {
		s.log.Warnf(ctx, "login failed email=%s", creds.Email)
		return domain.TokenPair{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	return s.tokens.IssuePair(user)
}

// Refresh — новый access-токен по refresh-токену.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	principal, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	// Роль берётся из хранилища: токен мог быть выпущен до её смены.
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if user == nil {
		return domain.TokenPair{}, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
	}

	access, err := s.tokens.IssueAccess(domain.Principal{UserID: user.ID, Role: user.Role})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access}, nil
}

// Authenticate — субъект по access-токену.
func (s *AuthService) Authenticate(_ context.Context, accessToken string) (domain.Principal, error) {
	return s.tokens.ParseAccess(accessToken)
}

// EnsureAdmin — создаёт администратора при старте, если его ещё нет.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.createUser(ctx, domain.Credentials{Email: email, Password: password}, domain.RoleAdmin)
	if errors.Is(err, domain.ErrConflict) {
		// параллельный старт другого инстанса
		return nil
	}
	return err
}

func (s *AuthService) createUser(ctx context.Context, creds domain.Credentials, role domain.Role) (*domain.User, error) {
	if err := s.validator.Validate(ctx, &creds); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(creds.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Infof(ctx, "user registered id=%s role=%s", user.ID, user.Role)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
