package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// Коды ошибок API.
const (
	codeNotFound          = "not_found"
	codeValidation        = "validation_error"
	codeInvalidTransition = "invalid_transition"
	codeConflict          = "conflict"
	codeInsufficientStock = "insufficient_stock"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeMethodNotAllowed  = "method_not_allowed"
	codeTimeout           = "timeout"
	codeInternal          = "internal_error"
)

var codeStatus = map[string]int{
	codeNotFound:          http.StatusNotFound,
	codeValidation:        http.StatusBadRequest,
	codeInvalidTransition: http.StatusConflict,
	codeConflict:          http.StatusConflict,
	codeInsufficientStock: http.StatusConflict,
	codeUnauthorized:      http.StatusUnauthorized,
	codeForbidden:         http.StatusForbidden,
	codeMethodNotAllowed:  http.StatusMethodNotAllowed,
	codeTimeout:           http.StatusGatewayTimeout,
	codeInternal:          http.StatusInternalServerError,
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// classify — доменная ошибка → код API. Порядок важен: более частные ошибки раньше.
func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return codeNotFound
	case errors.Is(err, domain.ErrValidation):
		return codeValidation
	case errors.Is(err, domain.ErrInvalidTransition):
		return codeInvalidTransition
	case errors.Is(err, domain.ErrInsufficientStock):
		return codeInsufficientStock
	case errors.Is(err, domain.ErrConflict):
		return codeConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return codeUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return codeForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return codeTimeout
	default:
		return codeInternal
	}
}

// details — текст ошибки для клиента без префикса sentinel-ошибки.
func details(err error, code string) string {
	if code == codeInternal || code == codeTimeout {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{
		domain.ErrNotFound, domain.ErrValidation, domain.ErrInvalidTransition,
		domain.ErrInsufficientStock, domain.ErrConflict, domain.ErrUnauthorized, domain.ErrForbidden,
	} {
		if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

// abortError — ответ с кодом API и прерывание цепочки обработчиков.
func abortError(c *gin.Context, code, detail string) {
	c.AbortWithStatusJSON(codeStatus[code], errorResponse{Error: code, Details: detail})
}

// writeError — ответ по ошибке сервиса; внутренние ошибки логируются, наружу не раскрываются.
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	code := classify(err)
	if code == codeInternal || code == codeTimeout {
		h.log.Errorf(c.Request.Context(), "%s failed: %v", op, err)
	}
	abortError(c, code, details(err, code))
}

func badRequest(c *gin.Context, detail string) {
	abortError(c, codeValidation, detail)
}
