package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mario1918/testCaseGenie-NG/common/logger"
)

// Recovery answers a handler panic with a 500 that carries the request id, so
// a client report can be matched to the logged stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()
			slog.ErrorContext(ctx, "handler panicked",
				"panic", fmt.Sprint(r),
				"route", c.FullPath(),
				"client_ip", c.ClientIP(),
				"stack", string(debug.Stack()))

			body := gin.H{"error": "internal server error"}
			if requestID := logger.GetLogFields(ctx).RequestID; requestID != nil {
				body["request_id"] = *requestID
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
