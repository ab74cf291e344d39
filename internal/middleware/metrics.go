package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"listing-reel-backend/internal/metrics"
)

// Prometheus records request duration labelled by route template, so
// project ids never become label values.
func Prometheus() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
