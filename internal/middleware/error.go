package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/carewatch-api/pkg/logger"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler logs errors handlers attached with c.Error. The response has
// already been written by then; this only records the underlying cause.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			log.ZL.Error().
				Err(e.Err).
				Str("request_id", GetRequestID(c)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Int("status", c.Writer.Status()).
				Msg("Request error")
		}
	}
}
