package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

// Middleware times each request and records it under its route template.
// Unmatched routes are grouped under "unmatched".
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqID := ctx.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx.Header(RequestIDHeader, reqID)

		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.Record(Sample{
			RequestID: reqID,
			Method:    ctx.Request.Method,
			Route:     route,
			Status:    ctx.Writer.Status(),
			LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
			User:      ctx.GetString("user_email"),
			At:        start,
		})
	}
}
