package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in a handler into a 500 carrying the correlation id.
// The panic is logged with its stack and, once Auth has run, the caller's tenant.
// A response that was already started is left as is.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			attrs := []any{
				"error", r,
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"correlation_id", GetCorrelationID(c),
			}
			if tenantID, ok := GetTenantID(c); ok {
				attrs = append(attrs, "tenant_id", tenantID.String(), "user_id", GetUserID(c))
			}
			logger.Error("Panic recovered", attrs...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
		}()

		c.Next()
	}
}
