// server/internal/api/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"port-ops-api-server/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate.
const (
	UserEmailKey = "user_email"
	UserRolesKey = "user_roles"
)

// Authenticate validates the bearer token and stores the caller in the context.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserEmailKey, claims.Subject)
		c.Set(UserRolesKey, claims.Roles)

		c.Next()
	}
}

// Authorize lets the request through when the caller holds one of allowedRoles.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(UserRolesKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		roles, ok := value.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User roles have an invalid type"})
			return
		}

		for _, allowed := range allowedRoles {
			for _, role := range roles {
				if role == allowed {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// MaintenanceKey guards maintenance endpoints with a shared key header.
// An empty configured key disables the endpoints.
func MaintenanceKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Maintenance endpoints are disabled"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Maintenance-Key")), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid maintenance key"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the email stored by Authenticate.
func CurrentUser(c *gin.Context) string {
	return c.GetString(UserEmailKey)
}
