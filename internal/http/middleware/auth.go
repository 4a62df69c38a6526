// README: Bearer-token auth middleware for administrative routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mrx/internal/infra"
)

const callerKey = "mrx.caller"

// Auth rejects requests without a valid "Authorization: Bearer <token>" header.
// A nil verifier lets every request through.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerKey, token.Subject)
		c.Next()
	}
}

// Caller returns the authenticated subject, or "" on open routes.
func Caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
