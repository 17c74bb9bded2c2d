package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/service"
)

const contextCaller = "caller"

// Authenticate resolves the caller from a Bearer token when one is supplied.
// Requests without an Authorization header pass through as anonymous; the
// permission checks in the service layer decide what anonymous callers may
// do. A header that is present but invalid is rejected outright.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		role, err := permissions.ParseRole(claims.Role)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(contextCaller, permissions.Caller{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     role,
		})

		c.Next()
	}
}

// CallerFromContext returns the authenticated caller, or the anonymous zero
// value when the request carried no credentials.
func CallerFromContext(c *gin.Context) permissions.Caller {
	if v, exists := c.Get(contextCaller); exists {
		if caller, ok := v.(permissions.Caller); ok {
			return caller
		}
	}
	return permissions.Caller{}
}
