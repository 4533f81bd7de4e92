package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS middleware for handling cross-origin requests. An empty list or a
// "*" entry allows every origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin == "":
		case allowAll || slices.Contains(allowedOrigins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		case strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1"):
			// For development, still allow localhost variations
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
