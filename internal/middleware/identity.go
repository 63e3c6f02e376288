package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Caller identity arrives pre-authenticated from the gateway in the
// X-User-Id header. This service never verifies credentials itself.
const identityHeader = "X-User-Id"

// RequireIdentity rejects requests without a resolved caller identity.
// Every mutating endpoint sits behind it.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(identityHeader)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid caller identity"})
			c.Abort()
			return
		}

		c.Set("user_id", userID.String())
		c.Next()
	}
}

// OptionalIdentity resolves the identity when present so read endpoints can
// report the viewer's own reaction, but lets anonymous reads through.
func OptionalIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(identityHeader)
		if raw != "" {
			if userID, err := uuid.Parse(raw); err == nil {
				c.Set("user_id", userID.String())
			}
		}
		c.Next()
	}
}
