package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/gin-gonic/gin"
)

// служебные маршруты в журнал запросов не попадают
var quietRoutes = map[string]struct{}{
	"/metrics": {},
	"/ping":    {},
}

// RequestLogger пишет одну строку на запрос; уровень зависит от статуса ответа.
// Поля request_id/user_id/trace логгер берёт из ctx: auth middleware подменяет c.Request,
// поэтому контекст читается после c.Next().
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, quiet := quietRoutes[route]; quiet {
			return
		}
		if route == "" {
			route = c.Request.URL.Path
		}

		status := c.Writer.Status()
		logf := levelFor(log, status)
		logf(c.Request.Context(),
			"request method=%s route=%s status=%d ip=%s duration=%s size=%d%s",
			c.Request.Method, route, status, c.ClientIP(), time.Since(start), c.Writer.Size(),
			ginErrors(c),
		)
	}
}

func levelFor(log ports.Logger, status int) func(context.Context, string, ...any) {
	switch {
	case status >= http.StatusInternalServerError:
		return log.Errorf
	case status >= http.StatusBadRequest:
		return log.Warnf
	default:
		return log.Infof
	}
}

func ginErrors(c *gin.Context) string {
	if len(c.Errors) == 0 {
		return ""
	}
	return " errors=" + c.Errors.String()
}
