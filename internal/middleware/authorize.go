package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin guards privileged routes on the freshly loaded user row, not
// on any token claim. Non-admins get 403 and their session state is left
// untouched.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
