package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminPasswordHeader carries the admin password on management requests
const AdminPasswordHeader = "X-Admin-Password"

// AdminAuth gates the regulation management routes behind a bcrypt-hashed password.
// With no hash configured the routes are disabled.
func AdminAuth(passwordHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if passwordHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ADMIN_DISABLED",
					"message": "ADMIN_PASSWORD_HASH is not configured",
				},
			})
			return
		}

		password := c.GetHeader(AdminPasswordHeader)
		if password == "" || bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "비밀번호가 올바르지 않습니다.",
				},
			})
			return
		}

		c.Next()
	}
}
