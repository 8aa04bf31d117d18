package middleware

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID propagates an incoming X-Request-ID or generates a new one, and
// keeps it on the context under RequestIDKey for the loggers.
func RequestID() gin.HandlerFunc {
	return requestid.New(
		requestid.WithCustomHeaderStrKey(requestid.HeaderStrKey(RequestIDHeader)),
		requestid.WithGenerator(uuid.NewString),
		requestid.WithHandler(func(c *gin.Context, id string) {
			c.Set(RequestIDKey, id)
		}),
	)
}
