// Package middleware holds the Gin middleware chain the Dispatch API runs
// requests through: request tagging and per-IP heartbeat rate limiting.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header a request id is echoed back on.
const RequestIDHeader = "X-Request-ID"

// RequestID stamps every request with a UUID, reusing one the caller already
// supplied so retries and proxies can correlate log lines across hops.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
