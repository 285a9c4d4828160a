package middleware

import (
	"net/http"
	"strings"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/utils"
	"github.com/gin-gonic/gin"
)

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// 2. Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		// 3. Validate token
		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// 4. Add claims to context (handlers can access)
		c.Set("user_id", claims.UserID.String())
		c.Set("username", claims.Username)
		c.Set("user_role", string(claims.Role))
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireRoles gates a route group to the given roles. AuthMiddleware must
// run first so the role claim is on the context.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			c.Abort()
			return
		}

		if !allowed[models.Role(role.(string))] {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient role",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
