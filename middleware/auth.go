package middleware

import (
	"net/http"
	"strings"

	"thorbis-backend/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid bearer token and attaches the caller
// identity to the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Authorization header required"},
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid authorization header format"},
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid or expired token"},
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Set("email_verified", claims.EmailVerified)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller identity when a valid token is
// present but never rejects the request. Read endpoints use it so owners and
// admins see their unpublished listings while anonymous callers still get
// the public view.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		if claims, err := utils.ValidateToken(parts[1]); err == nil {
			c.Set("user_id", claims.UserID)
			c.Set("user_role", claims.Role)
			c.Set("email_verified", claims.EmailVerified)
		}
		c.Next()
	}
}

// AdminMiddleware requires the caller to hold the admin role.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "Admin access required"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// VerifiedEmailMiddleware requires the caller's email to be verified.
// Business creation is gated on it.
func VerifiedEmailMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		verified, exists := c.Get("email_verified")
		if !exists || verified != true {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "Email verification required"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
