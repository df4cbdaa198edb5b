package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// AttachRequestContext stamps every request with a trace_id: the active
// OTel span's trace ID when tracing is configured, otherwise a fresh UUID.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := trace.SpanContextFromContext(c.Request.Context()).TraceID()
		if traceID.IsValid() {
			c.Set("trace_id", traceID.String())
		} else {
			c.Set("trace_id", uuid.New().String())
		}
		c.Next()
	}
}
