package rest

import (
	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_backend/pkg/httpx"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// authenticate — разбирает Bearer-токен, если он есть.
// Невалидный токен — 401 даже на публичных маршрутах; отсутствие токена — анонимный запрос.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := httpx.BearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.writeError(c, "authenticate", err)
			return
		}
		setPrincipal(c, principal)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalKey, principal)
	c.Request = c.Request.WithContext(ctxmeta.WithUserID(c.Request.Context(), principal.UserID))
}

func principalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := principalFrom(c); !ok {
			abortError(c, codeUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			abortError(c, codeUnauthorized, "authentication required")
			return
		}
		if !p.IsAdmin() {
			abortError(c, codeForbidden, "admin role required")
			return
		}
		c.Next()
	}
}
