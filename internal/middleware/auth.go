// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/sobrazero/sobrazero-backend/internal/i18n"
	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest accepts the JWT either as a bearer header or as the
// HttpOnly cookie the web client sets.
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = "es"
		}

		token := tokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthRequired),
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthTokenExpired),
			})
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user_id", claims.UserID)
		c.Set("nombre", claims.Nombre)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = "es"
		}

		role, exists := c.Get("role")
		if !exists || role != string(models.UserRoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": i18n.T(lang, i18n.KeyAdminAccessDenied),
			})
			c.Abort()
			return
		}
		c.Next()
	})
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.Next()
			return
		}

		// Set user info in context if token is valid
		c.Set("user_id", claims.UserID)
		c.Set("nombre", claims.Nombre)
		c.Set("role", claims.Role)
		c.Next()
	}
}
