package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds configuration for the origin security middleware.
type SecurityConfig struct {
	// AllowedOrigins is the set of origins permitted to call the API from
	// a browser context.
	AllowedOrigins []string
}

// Security returns middleware that emits CORS headers for allowed origins
// and validates Origin/Referer on state-changing methods. Requests without
// either header (direct API calls) are allowed through; a present but
// unlisted origin is rejected.
func Security(config SecurityConfig) gin.HandlerFunc {
	allowedSet := make(map[string]bool)
	for _, origin := range config.AllowedOrigins {
		normalized := strings.TrimSuffix(strings.ToLower(origin), "/")
		allowedSet[normalized] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && isAllowedOrigin(origin, allowedSet) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		// Only validate state-changing methods.
		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead {
			c.Next()
			return
		}

		if origin != "" {
			if !isAllowedOrigin(origin, allowedSet) {
				c.AbortWithStatusJSON(http.StatusForbidden, rejection{
					Message: "Origin not allowed",
					Error:   "FORBIDDEN",
				})
				return
			}
			c.Next()
			return
		}

		if referer := c.GetHeader("Referer"); referer != "" {
			if !isAllowedOrigin(extractOrigin(referer), allowedSet) {
				c.AbortWithStatusJSON(http.StatusForbidden, rejection{
					Message: "Referer not allowed",
					Error:   "FORBIDDEN",
				})
				return
			}
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the given origin is in the allowed set.
func isAllowedOrigin(origin string, allowedSet map[string]bool) bool {
	normalized := strings.TrimSuffix(strings.ToLower(origin), "/")
	return allowedSet[normalized]
}

// extractOrigin extracts the origin (scheme://host:port) from a URL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
