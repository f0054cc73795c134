package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pixkeep/pixkeep/internal/server/identity"
)

// ctxUserIDKey is the gin context key under which AuthRequired stores the
// authenticated account id.
const ctxUserIDKey = "userID"

// AuthRequired verifies the Bearer token and stores the account id in the
// request context. Expired and malformed tokens get the same 401 body.
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}

		userID, err := identity.GetUserIDFromToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
