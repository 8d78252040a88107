package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gunvolt24/shop_backend/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_backend/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func serveWithRequestID(t *testing.T, header string) (respID, ctxID string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(httpx.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		ctxID, _ = ctxmeta.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if header != "" {
		req.Header.Set(httpx.HeaderRequestID, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w.Header().Get(httpx.HeaderRequestID), ctxID
}

func TestRequestIDMiddleware_KeepsValidClientID(t *testing.T) {
	respID, ctxID := serveWithRequestID(t, "checkout-7f3a.retry_2")
	require.Equal(t, "checkout-7f3a.retry_2", respID)
	require.Equal(t, respID, ctxID)
}

func TestRequestIDMiddleware_GeneratesUUID(t *testing.T) {
	tests := map[string]string{
		"missing":      "",
		"too long":     strings.Repeat("a", 65),
		"spaces":       "order 42",
		"control char": "id\x1binjected",
		"non ascii":    "заказ-1",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			respID, ctxID := serveWithRequestID(t, header)
			_, err := uuid.Parse(respID)
			require.NoError(t, err, "generated id must be a UUID, got %q", respID)
			require.Equal(t, respID, ctxID)
		})
	}
}
