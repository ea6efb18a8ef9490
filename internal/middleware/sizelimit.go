package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SizeLimitConfig caps request bodies and headers. Twilio webhooks and alert
// payloads are small, so the defaults are tight.
type SizeLimitConfig struct {
	MaxBodySize   int64
	MaxHeaderSize int
	ErrorMessage  string
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20,
		MaxHeaderSize: 1 << 14,
		ErrorMessage:  "Request size exceeds limit",
	}
}

func headerBytes(h http.Header) int {
	n := 0
	for name, values := range h {
		n += len(name)
		for _, v := range values {
			n += len(v)
		}
	}
	return n
}

// SizeLimit rejects requests whose declared body or headers are too large and
// caps bodies that declare no length.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	defaults := DefaultSizeLimitConfig()
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = defaults.MaxBodySize
	}
	if config.MaxHeaderSize <= 0 {
		config.MaxHeaderSize = defaults.MaxHeaderSize
	}
	if config.ErrorMessage == "" {
		config.ErrorMessage = defaults.ErrorMessage
	}

	reject := func(c *gin.Context, what string, limit int64) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Code:    http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("%s: %s exceeds %d bytes", config.ErrorMessage, what, limit),
			TraceID: GetRequestID(c),
		})
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > config.MaxBodySize {
			reject(c, "body", config.MaxBodySize)
			return
		}
		if headerBytes(c.Request.Header) > config.MaxHeaderSize {
			reject(c, "headers", int64(config.MaxHeaderSize))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		}
		c.Next()
	}
}
