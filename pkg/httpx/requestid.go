package httpx

import (
	"github.com/Gunvolt24/shop_backend/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxRequestIDLen = 64
)

// RequestIDMiddleware берёт X-Request-ID клиента, если он корректен, иначе генерирует UUID.
// Итоговый id попадает в контекст запроса и в ответный заголовок.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(ctxmeta.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// validRequestID — непустой, не длиннее 64 символов, только [A-Za-z0-9._-].
// Значение уходит в логи, поэтому произвольный ввод клиента не принимаем.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch ch := id[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.':
		default:
			return false
		}
	}
	return true
}
