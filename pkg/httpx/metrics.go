package httpx

import (
	"strconv"
	"time"

	"github.com/Gunvolt24/shop_backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics — счётчик запросов и гистограмма латентности по шаблону маршрута.
// Неизвестные маршруты сводятся к одной метке, чтобы не раздувать кардинальность.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		switch route {
		case "/metrics":
			return
		case "":
			route = "unmatched"
		}

		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
