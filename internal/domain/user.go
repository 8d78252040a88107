package domain

import "time"

// Role — роль пользователя.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User — учётная запись. Хэш пароля наружу не сериализуется.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials — email и пароль из запроса регистрации/логина.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72,bcryptlen"`
}

// TokenPair — пара access/refresh токенов.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Principal — аутентифицированный субъект запроса.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin — есть ли права администратора.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanAccessUser — может ли субъект работать с данными пользователя userID.
func (p Principal) CanAccessUser(userID string) bool {
	return p.IsAdmin() || (p.UserID != "" && p.UserID == userID)
}
