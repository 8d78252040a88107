package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
)

var _ ports.TokenManager = (*JWTManager)(nil)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// claims — полезная нагрузка токена: sub = userID.
type claims struct {
	Role      domain.Role `json:"role"`
	TokenType string      `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager — выпуск и проверка HS256 токенов.
type JWTManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

func NewJWTManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *JWTManager) IssuePair(user *domain.User) (domain.TokenPair, error) {
	if user == nil || user.ID == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: empty user", domain.ErrUnauthorized)
	}
	principal := domain.Principal{UserID: user.ID, Role: user.Role}

	access, err := m.sign(principal, tokenAccess, m.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := m.sign(principal, tokenRefresh, m.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *JWTManager) IssueAccess(principal domain.Principal) (string, error) {
	return m.sign(principal, tokenAccess, m.accessTTL)
}

func (m *JWTManager) ParseAccess(token string) (domain.Principal, error) {
	return m.parse(token, tokenAccess)
}

func (m *JWTManager) ParseRefresh(token string) (domain.Principal, error) {
	return m.parse(token, tokenRefresh)
}

func (m *JWTManager) sign(principal domain.Principal, typ string, ttl time.Duration) (string, error) {
	now := m.now()
	c := claims{
		Role:      principal.Role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (m *JWTManager) parse(token, typ string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, fmt.Errorf("%w: empty token", domain.ErrUnauthorized)
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if c.TokenType != typ {
		return domain.Principal{}, fmt.Errorf("%w: %s token expected", domain.ErrUnauthorized, typ)
	}
	if c.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: token without subject", domain.ErrUnauthorized)
	}
	return domain.Principal{UserID: c.Subject, Role: c.Role}, nil
}
