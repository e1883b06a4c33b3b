package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/mario1918/testCaseGenie-NG/common/id"
	"github.com/mario1918/testCaseGenie-NG/common/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or mints one, echoes it back and
// attaches it to the request context log fields.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			if generated, err := id.NewString(); err == nil {
				requestID = generated
			}
		}

		if requestID != "" {
			c.Header(RequestIDHeader, requestID)
			ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
				RequestID: logger.Ptr(requestID),
				Component: "relay.http",
			})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}
