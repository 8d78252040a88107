package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
)

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher — хэширование паролей через bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher — cost <= 0 означает bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password exceeds 72 bytes", domain.ErrValidation)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
