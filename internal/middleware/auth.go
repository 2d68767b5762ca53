// Package middleware provides HTTP middleware for the auth service.
package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/FachruDev/backend-codecraft/internal/cache"
	"github.com/FachruDev/backend-codecraft/internal/service"
	"github.com/gin-gonic/gin"
)

// ContextClaimsKey is the gin context key holding the authenticated claims.
const ContextClaimsKey = "auth_claims"

type rejection struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

var (
	rejectUnauthorized = rejection{
		Message: "Access denied",
		Error:   "UNAUTHORIZED",
	}
	rejectInvalidToken = rejection{
		Message: "Token is invalid or has expired",
		Error:   "INVALID_TOKEN",
	}
	rejectForbidden = rejection{
		Message: "You do not have permission to access this resource",
		Error:   "FORBIDDEN",
	}
	rejectInsufficientPermissions = rejection{
		Message: "You do not have the required permissions",
		Error:   "INSUFFICIENT_PERMISSIONS",
	}
	rejectServerError = rejection{
		Message: "An internal server error occurred",
		Error:   "INTERNAL_SERVER_ERROR",
	}
)

// Authenticate verifies the bearer access token and attaches its claims to
// the request context. Missing token rejects with UNAUTHORIZED; any
// verification failure, expired or malformed alike, rejects with
// INVALID_TOKEN so callers cannot probe which it was.
func Authenticate(jwtService service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, rejectUnauthorized)
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, rejectInvalidToken)
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and
// proceeds without identity otherwise. It never rejects.
func OptionalAuth(jwtService service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearerToken(c); token != "" {
			if claims, err := jwtService.ValidateAccessToken(token); err == nil {
				c.Set(ContextClaimsKey, claims)
			}
		}
		c.Next()
	}
}

// RequireRole admits only callers whose role is in the allow-set.
// Unauthenticated callers get 401, authenticated callers with the wrong
// role get 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, rejectUnauthorized)
			return
		}
		if _, allowed := roleSet[claims.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, rejectForbidden)
			return
		}
		c.Next()
	}
}

// RequirePermission admits callers whose resolved permission set intersects
// the required set. Resolution goes through the permission cache, falling
// back to the credential store on a miss.
func RequirePermission(permissionCache *cache.PermissionCache, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, rejectUnauthorized)
			return
		}

		resolved, err := permissionCache.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Printf("Permission check failed for user %d: %v", claims.UserID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, rejectServerError)
			return
		}

		if !resolved.ContainsAny(permissions) {
			c.AbortWithStatusJSON(http.StatusForbidden, rejectInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the authenticated claims attached by
// Authenticate or OptionalAuth.
func ClaimsFromContext(c *gin.Context) (*service.Claims, bool) {
	value, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*service.Claims)
	return claims, ok
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
