package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gymdesk/models"
	"gymdesk/services"
)

// CookieName is the session cookie set on login and register.
const CookieName = "gymdesk_jwt"

// Context keys set by AuthRequired.
const (
	KeyUserID   = "userID"
	KeyUserRole = "userRole"
)

type TokenParser interface {
	Parse(token string) (*services.Claims, error)
}

func AuthRequired(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Token Extraction
		tokenString := ""

		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		// Check Cookie (fallback)
		if tokenString == "" {
			if cookie, err := c.Cookie(CookieName); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		// 2. Validation
		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyUserRole, claims.Role)
		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(KeyUserRole)
		if r, ok := role.(models.Role); !ok || r != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(KeyUserID)
}
