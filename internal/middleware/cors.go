package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS sets Access-Control-* headers and answers OPTIONS preflight. With no
// allowed origins it passes requests through untouched.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originsSet := make(map[string]bool)
	for _, o := range allowedOrigins {
		originsSet[strings.TrimSpace(o)] = true
	}
	const (
		methods = "GET, POST, DELETE, OPTIONS"
		headers = "Authorization, Content-Type, X-Request-ID, X-Webhook-Token"
	)

	return func(c *gin.Context) {
		if len(originsSet) == 0 {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin != "" && (originsSet[origin] || originsSet["*"]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", "86400")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
