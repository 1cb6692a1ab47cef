package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-portal/pkg/logger"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every portal request with an id so one booking or record
// change can be followed across the access log, the panic log and the
// service logs that lead to an audit event. A caller supplied X-Request-ID
// is kept, otherwise a uuid is generated. The id is echoed in the response
// header, stored on the gin context for Logger and Recovery, and put on the
// request context where logger.WithContext picks it up in the services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}
