package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var corsPolicy = map[string]string{
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, X-Request-Id",
	"Access-Control-Max-Age":       "600",
}

// CORS answers preflights and tags responses for the allowed origins.
// An empty allowlist allows any origin.
func CORS(allowlist []string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, origin := range allowlist {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			allowed[origin] = true
		}
	}
	return func(c *gin.Context) {
		if value := allowOrigin(allowed, c.GetHeader("Origin")); value != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", value)
			for k, v := range corsPolicy {
				h.Set(k, v)
			}
		}
		if len(allowed) > 0 {
			c.Writer.Header().Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowOrigin(allowed map[string]bool, origin string) string {
	switch {
	case len(allowed) == 0:
		return "*"
	case origin != "" && allowed[origin]:
		return origin
	}
	return ""
}
