package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/apierror"
)

// Recovery turns a panic anywhere below it into a 500 response carrying the
// panic message.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic recovered",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				c.Header("Connection", "close")
				apierror.Abort(c, apierror.Internal(fmt.Errorf("%v", r)))
			}
		}()
		c.Next()
	}
}
