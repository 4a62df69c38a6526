// README: Recovery middleware; a panicking handler answers 500 and the server keeps serving the game.
package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Printf("http: panic in %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, rec, debug.Stack())
			// websocket handlers may already have hijacked the connection
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}
